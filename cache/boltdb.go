// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package cache

import (
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

var samplesBucket = []byte("samples")

// BoltStore is a Store kept in a single BoltDB file.
type BoltStore struct {
	Db *bolt.DB
}

var _ Store = &BoltStore{}

// OpenBolt opens or creates the BoltDB file at filename.
func OpenBolt(filename string) (*BoltStore, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(samplesBucket)
		return errors.Wrap(err, "creating samples bucket")
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ensuring bucket existence")
	}
	return &BoltStore{Db: db}, nil
}

// Get returns the entry stored under k.
func (bs *BoltStore) Get(k Key) (e Entry, err error) {
	err = bs.Db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(samplesBucket).Get(encodeKey(k))
		if val == nil {
			return ErrNotFound
		}
		e, err = decodeEntry(val)
		return err
	})
	return e, err
}

// Put stores e under k, replacing any previous entry.
func (bs *BoltStore) Put(k Key, e Entry) error {
	err := bs.Db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(samplesBucket).Put(encodeKey(k), encodeEntry(e))
	})
	return errors.Wrapf(err, "putting %s", k)
}

// Delete removes the entry under k, if any.
func (bs *BoltStore) Delete(k Key) error {
	err := bs.Db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(samplesBucket).Delete(encodeKey(k))
	})
	return errors.Wrapf(err, "deleting %s", k)
}

// Walk implements Store.
func (bs *BoltStore) Walk(fn func(k Key, stored time.Time) error) error {
	return bs.Db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(samplesBucket).ForEach(func(kb, vb []byte) error {
			k, err := decodeKey(kb)
			if err != nil {
				return err
			}
			stored, err := decodeStored(vb)
			if err != nil {
				return errors.Wrapf(err, "decoding %s", k)
			}
			return fn(k, stored)
		})
	})
}

// Close syncs and closes the database.
func (bs *BoltStore) Close() error {
	err := bs.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return bs.Db.Close()
}
