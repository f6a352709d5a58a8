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

package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/VIDA-NYU/auctus-sub001/cache"
	"github.com/VIDA-NYU/auctus-sub001/test"
)

func fill(t *testing.T, s cache.Store, ages map[string]time.Duration) {
	t.Helper()
	for ds, age := range ages {
		err := s.Put(cache.Key{Dataset: ds, Size: 50}, cache.Entry{Data: []byte(ds), Stored: epoch.Add(-age)})
		test.ErrNil(t, err, "putting "+ds)
	}
}

func TestClean(t *testing.T) {
	ages := map[string]time.Duration{
		"fresh":  time.Minute,
		"hour":   time.Hour,
		"day":    25 * time.Hour,
		"week":   8 * 24 * time.Hour,
		"twin-a": 2 * time.Hour,
		"twin-b": 2 * time.Hour,
	}
	tests := []struct {
		name    string
		policy  cache.Policy
		removed int
		left    []string
	}{
		{
			name:    "unlimited",
			policy:  cache.Policy{},
			removed: 0,
			left:    []string{"day@50", "fresh@50", "hour@50", "twin-a@50", "twin-b@50", "week@50"},
		},
		{
			name:    "age",
			policy:  cache.Policy{MaxAge: 24 * time.Hour},
			removed: 2,
			left:    []string{"fresh@50", "hour@50", "twin-a@50", "twin-b@50"},
		},
		{
			name:    "count",
			policy:  cache.Policy{MaxEntries: 3},
			removed: 3,
			left:    []string{"fresh@50", "hour@50", "twin-b@50"},
		},
		{
			name:    "both",
			policy:  cache.Policy{MaxAge: 24 * time.Hour, MaxEntries: 1},
			removed: 5,
			left:    []string{"fresh@50"},
		},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			withStores(t, func(t *testing.T, s cache.Store, path string) {
				fill(t, s, ages)
				removed, err := cache.Clean(s, tst.policy, epoch)
				test.ErrNil(t, err, "cleaning")
				test.MustBe(t, tst.removed, removed, "removed")
				test.MustBe(t, tst.left, keys(t, s))

				removed, err = cache.Clean(s, tst.policy, epoch)
				test.ErrNil(t, err, "cleaning again")
				test.MustBe(t, 0, removed, "removed on second run")
			})
		})
	}
}

func TestCleanInvalidPolicy(t *testing.T) {
	withStores(t, func(t *testing.T, s cache.Store, path string) {
		if _, err := cache.Clean(s, cache.Policy{MaxEntries: -1}, epoch); err == nil {
			t.Fatal("expected error for negative MaxEntries")
		}
	})
}

func TestCleanMain(t *testing.T) {
	dir := test.MustTempDir(t)
	defer os.RemoveAll(dir)

	m := cache.NewMain()
	m.CachePath = filepath.Join(dir, "samples.db")
	s, err := cache.Open(m.CacheType, m.CachePath)
	test.ErrNil(t, err, "opening")
	fill(t, s, map[string]time.Duration{"old": 30 * 24 * time.Hour, "new": time.Hour})
	test.ErrNil(t, s.Close(), "closing")

	ticks := make(chan time.Time, 1)
	ticks <- epoch
	close(ticks)
	m.Ticks = ticks
	m.Now = func() time.Time { return epoch }
	test.ErrNil(t, m.Run(), "running cleaner")

	s, err = cache.Open(m.CacheType, m.CachePath)
	test.ErrNil(t, err, "reopening")
	defer s.Close()
	test.MustBe(t, []string{"new@50"}, keys(t, s))
}
