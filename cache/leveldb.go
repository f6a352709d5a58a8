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
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelStore is a Store kept in a LevelDB directory.
type LevelStore struct {
	db *leveldb.DB
}

var _ Store = &LevelStore{}

// OpenLevel opens or creates the LevelDB database in dirname.
func OpenLevel(dirname string) (*LevelStore, error) {
	err := os.MkdirAll(dirname, 0700)
	if err != nil {
		return nil, errors.Wrap(err, "making directory")
	}
	db, err := leveldb.OpenFile(dirname, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", dirname)
	}
	return &LevelStore{db: db}, nil
}

// Get returns the entry stored under k.
func (ls *LevelStore) Get(k Key) (Entry, error) {
	data, err := ls.db.Get(encodeKey(k), nil)
	if err == leveldb.ErrNotFound {
		return Entry{}, ErrNotFound
	} else if err != nil {
		return Entry{}, errors.Wrapf(err, "fetching %s", k)
	}
	return decodeEntry(data)
}

// Put stores e under k, replacing any previous entry.
func (ls *LevelStore) Put(k Key, e Entry) error {
	err := ls.db.Put(encodeKey(k), encodeEntry(e), &opt.WriteOptions{Sync: true})
	return errors.Wrapf(err, "putting %s", k)
}

// Delete removes the entry under k, if any.
func (ls *LevelStore) Delete(k Key) error {
	return errors.Wrapf(ls.db.Delete(encodeKey(k), nil), "deleting %s", k)
}

// Walk implements Store.
func (ls *LevelStore) Walk(fn func(k Key, stored time.Time) error) error {
	iter := ls.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		k, err := decodeKey(iter.Key())
		if err != nil {
			return err
		}
		stored, err := decodeStored(iter.Value())
		if err != nil {
			return errors.Wrapf(err, "decoding %s", k)
		}
		if err := fn(k, stored); err != nil {
			return err
		}
	}
	return errors.Wrap(iter.Error(), "iterating")
}

// Close closes the database.
func (ls *LevelStore) Close() error {
	return errors.Wrap(ls.db.Close(), "closing leveldb")
}
