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

// Package cache stores computed dataset samples so they are only computed
// once, and cleans them up by age and count.
package cache

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Store.Get for keys with no entry.
var ErrNotFound = errors.New("sample not found in cache")

// Key identifies a cached sample.
type Key struct {
	Dataset string
	Size    int
}

func (k Key) String() string {
	return k.Dataset + "@" + strconv.Itoa(k.Size)
}

// Entry is a cached sample and the time it was stored.
type Entry struct {
	Data   []byte
	Stored time.Time
}

// Store is a persistent map from Key to Entry.
type Store interface {
	Get(k Key) (Entry, error)
	Put(k Key, e Entry) error
	Delete(k Key) error

	// Walk calls fn with every key and the time its entry was stored. It
	// stops at the first error from fn and returns it. fn must not modify
	// the Store.
	Walk(fn func(k Key, stored time.Time) error) error

	Close() error
}

// Open opens the store of the given kind ("bolt" or "leveldb") at path.
func Open(kind, path string) (Store, error) {
	switch kind {
	case "bolt", "boltdb":
		return OpenBolt(path)
	case "leveldb":
		return OpenLevel(path)
	}
	return nil, errors.Errorf("unknown cache type '%s', must be bolt or leveldb", kind)
}

func encodeKey(k Key) []byte {
	return []byte(k.Dataset + "\x00" + strconv.Itoa(k.Size))
}

func decodeKey(b []byte) (Key, error) {
	s := string(b)
	i := strings.LastIndexByte(s, 0)
	if i < 0 {
		return Key{}, errors.Errorf("malformed cache key %q", s)
	}
	size, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return Key{}, errors.Wrapf(err, "parsing size of cache key %q", s)
	}
	return Key{Dataset: s[:i], Size: size}, nil
}

// Values are the big-endian unix nanosecond store time followed by the
// sample bytes.
func encodeEntry(e Entry) []byte {
	buf := make([]byte, 8+len(e.Data))
	binary.BigEndian.PutUint64(buf, uint64(e.Stored.UnixNano()))
	copy(buf[8:], e.Data)
	return buf
}

func decodeStored(b []byte) (time.Time, error) {
	if len(b) < 8 {
		return time.Time{}, errors.Errorf("cache value too short: %d bytes", len(b))
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(b))), nil
}

// decodeEntry copies b, which may be owned by the database.
func decodeEntry(b []byte) (Entry, error) {
	stored, err := decodeStored(b)
	if err != nil {
		return Entry{}, err
	}
	data := make([]byte, len(b)-8)
	copy(data, b[8:])
	return Entry{Data: data, Stored: stored}, nil
}
