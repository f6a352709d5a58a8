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
	"log"
	"time"

	"github.com/pkg/errors"
)

// Main holds the options for cleaning the sample cache.
type Main struct {
	CachePath  string        `help:"Path of the sample cache."`
	CacheType  string        `help:"Cache backend: bolt or leveldb."`
	MaxAge     time.Duration `help:"Remove samples stored longer ago than this. 0 keeps them regardless of age."`
	MaxEntries int           `help:"Keep at most this many samples, removing the oldest first. 0 means no limit."`
	Interval   time.Duration `help:"Clean repeatedly at this interval. 0 cleans once and exits."`

	// Now is the clock; nil means time.Now.
	Now func() time.Time `flag:"-"`
	// Ticks, if set, replaces the interval ticker.
	Ticks <-chan time.Time `flag:"-"`
}

// NewMain returns a new Main with default values.
func NewMain() *Main {
	return &Main{
		CachePath:  "auctus-samples.db",
		CacheType:  "bolt",
		MaxAge:     time.Hour * 24 * 7,
		MaxEntries: 0,
	}
}

// Run opens the cache and cleans it once, or on every tick if an interval or
// tick channel is set, until the ticks stop.
func (m *Main) Run() error {
	if m.Now == nil {
		m.Now = time.Now
	}
	policy := Policy{MaxAge: m.MaxAge, MaxEntries: m.MaxEntries}
	store, err := Open(m.CacheType, m.CachePath)
	if err != nil {
		return errors.Wrap(err, "opening cache")
	}
	defer store.Close()

	ticks := m.Ticks
	if ticks == nil && m.Interval > 0 {
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()
		ticks = ticker.C
	}
	for {
		removed, err := Clean(store, policy, m.Now())
		if err != nil {
			return err
		}
		log.Printf("removed %d samples from %s", removed, m.CachePath)
		if ticks == nil {
			return nil
		}
		if _, ok := <-ticks; !ok {
			return nil
		}
	}
}
