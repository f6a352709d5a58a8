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
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Policy bounds what a Store may keep. Zero values mean no limit.
type Policy struct {
	MaxAge     time.Duration
	MaxEntries int
}

type stamped struct {
	key    Key
	stored time.Time
}

// Clean deletes the entries of s which are older than p.MaxAge at now, and
// then the oldest entries beyond p.MaxEntries. Ties in age are broken by key
// so that repeated runs remove the same entries. It returns the number of
// entries removed.
func Clean(s Store, p Policy, now time.Time) (removed int, err error) {
	if p.MaxAge < 0 || p.MaxEntries < 0 {
		return 0, errors.Errorf("invalid cleaning policy %+v", p)
	}
	var keep, drop []stamped
	err = s.Walk(func(k Key, stored time.Time) error {
		e := stamped{key: k, stored: stored}
		if p.MaxAge > 0 && now.Sub(stored) > p.MaxAge {
			drop = append(drop, e)
		} else {
			keep = append(keep, e)
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "walking cache")
	}
	if p.MaxEntries > 0 && len(keep) > p.MaxEntries {
		sort.Slice(keep, func(i, j int) bool {
			if keep[i].stored.Equal(keep[j].stored) {
				return keep[i].key.String() < keep[j].key.String()
			}
			return keep[i].stored.Before(keep[j].stored)
		})
		excess := len(keep) - p.MaxEntries
		drop = append(drop, keep[:excess]...)
	}
	for _, e := range drop {
		if err := s.Delete(e.key); err != nil {
			return removed, errors.Wrap(err, "cleaning cache")
		}
		removed++
	}
	return removed, nil
}
