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

package auctus

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// RecordReader is implemented by anything which yields CSV records one at a
// time, returning io.EOF once exhausted. *csv.Reader satisfies it.
type RecordReader interface {
	Read() (record []string, err error)
}

// ErrInvalidSize is returned when a negative sample size is requested.
var ErrInvalidSize = errors.New("sample size must not be negative")

// Sample reads r to the end and returns its first record followed by a
// uniform random sample of at most k of the remaining records. If r holds k
// or fewer records after the first, all of them are returned in input order.
// When r fails, the error is returned and no records are.
//
// Sampling uses Algorithm L (Li, 1994): after the reservoir fills, the number
// of records to skip before the next replacement is drawn directly, so only
// O(k(1 + log(N/k))) random numbers are needed for N records. The sequence of
// draws made on rng is fixed, which makes the output a pure function of the
// input and rng's seed.
func Sample(r RecordReader, k int, rng Rand) ([][]string, error) {
	if k < 0 {
		return nil, ErrInvalidSize
	}

	// Fill. The reservoir grows as records arrive instead of being sized
	// up front, so a huge k costs nothing on a short input.
	var reservoir [][]string
	for len(reservoir) <= k {
		rec, err := r.Read()
		if err == io.EOF {
			return reservoir, nil
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading record %d", len(reservoir)+1)
		}
		reservoir = append(reservoir, rec)
	}
	if k == 0 {
		return reservoir, nil
	}

	// Skip and replace. pos is the 1-based body index of the last record
	// read, pick the body index of the next record to keep.
	kf := float64(k)
	w := math.Exp(math.Log(rng.Float64()) / kf)
	pos, pick := k, k
	for {
		skip := math.Floor(math.Log(rng.Float64()) / math.Log(1-w))
		if !(skip >= 0 && skip < maxSkip) {
			// w has underflowed; no further record will be picked.
			return drain(r, reservoir, pos)
		}
		pick += int(skip) + 1
		var rec []string
		for pos < pick {
			var err error
			rec, err = r.Read()
			if err == io.EOF {
				return reservoir, nil
			} else if err != nil {
				return nil, errors.Wrapf(err, "reading record %d", pos+2)
			}
			pos++
		}
		// Slot 0 holds the header and is never replaced.
		reservoir[rng.IntRange(1, k)] = rec
		w *= math.Exp(math.Log(rng.Float64()) / kf)
	}
}

// maxSkip bounds a single skip to the range where float64 still counts
// records exactly.
const maxSkip = 1 << 53

// drain consumes the rest of r so that read errors still surface.
func drain(r RecordReader, reservoir [][]string, pos int) ([][]string, error) {
	for {
		_, err := r.Read()
		if err == io.EOF {
			return reservoir, nil
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading record %d", pos+2)
		}
		pos++
	}
}
