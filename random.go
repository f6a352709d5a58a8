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

import "math/bits"

// Rand is the source of randomness used by Sample.
type Rand interface {
	// Float64 returns a pseudo-random number in the open interval (0, 1).
	Float64() float64

	// IntRange returns a uniformly distributed integer in [a, b]. It panics
	// if b < a.
	IntRange(a, b int) int
}

const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff
)

// MersenneTwister is an MT19937 generator which is seeded and drawn from the
// same way as CPython's random.Random, so that a given seed yields the same
// samples in both. It is not safe for concurrent use.
type MersenneTwister struct {
	mt  [mtN]uint32
	mti int
}

var _ Rand = &MersenneTwister{}

// NewMersenneTwister returns a generator seeded with seed.
func NewMersenneTwister(seed uint64) *MersenneTwister {
	m := &MersenneTwister{}
	m.Seed(seed)
	return m
}

// Seed resets the generator state. The seed is split into 32-bit words,
// least significant first, and fed to init_by_array.
func (m *MersenneTwister) Seed(seed uint64) {
	key := []uint32{uint32(seed)}
	if hi := uint32(seed >> 32); hi != 0 {
		key = append(key, hi)
	}
	m.seedArray(key)
}

func (m *MersenneTwister) seedScalar(s uint32) {
	m.mt[0] = s
	for i := 1; i < mtN; i++ {
		m.mt[i] = 1812433253*(m.mt[i-1]^(m.mt[i-1]>>30)) + uint32(i)
	}
	m.mti = mtN
}

func (m *MersenneTwister) seedArray(key []uint32) {
	m.seedScalar(19650218)
	i, j := 1, 0
	k := mtN
	if len(key) > k {
		k = len(key)
	}
	for ; k > 0; k-- {
		m.mt[i] = (m.mt[i] ^ ((m.mt[i-1] ^ (m.mt[i-1] >> 30)) * 1664525)) + key[j] + uint32(j)
		i++
		j++
		if i >= mtN {
			m.mt[0] = m.mt[mtN-1]
			i = 1
		}
		if j >= len(key) {
			j = 0
		}
	}
	for k = mtN - 1; k > 0; k-- {
		m.mt[i] = (m.mt[i] ^ ((m.mt[i-1] ^ (m.mt[i-1] >> 30)) * 1566083941)) - uint32(i)
		i++
		if i >= mtN {
			m.mt[0] = m.mt[mtN-1]
			i = 1
		}
	}
	m.mt[0] = 0x80000000
}

func (m *MersenneTwister) generate() {
	var y uint32
	for kk := 0; kk < mtN; kk++ {
		y = (m.mt[kk] & mtUpperMask) | (m.mt[(kk+1)%mtN] & mtLowerMask)
		m.mt[kk] = m.mt[(kk+mtM)%mtN] ^ (y >> 1)
		if y&1 != 0 {
			m.mt[kk] ^= mtMatrixA
		}
	}
	m.mti = 0
}

// Uint32 returns the next tempered 32-bit output.
func (m *MersenneTwister) Uint32() uint32 {
	if m.mti >= mtN {
		m.generate()
	}
	y := m.mt[m.mti]
	m.mti++
	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

// Bits returns a uniformly distributed integer of k bits, 0 <= k <= 64.
// Words are consumed least significant first, and a partial word keeps its
// high bits.
func (m *MersenneTwister) Bits(k uint) uint64 {
	if k == 0 {
		return 0
	}
	if k > 64 {
		panic("auctus: Bits called with more than 64 bits")
	}
	var r uint64
	for shift := uint(0); k > 0; shift += 32 {
		w := m.Uint32()
		if k < 32 {
			w >>= 32 - k
			k = 0
		} else {
			k -= 32
		}
		r |= uint64(w) << shift
	}
	return r
}

// float53 returns a float in [0, 1) with 53 bits of resolution.
func (m *MersenneTwister) float53() float64 {
	a := m.Uint32() >> 5
	b := m.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) * (1.0 / 9007199254740992.0)
}

// Float64 returns a float in (0, 1). A zero draw is discarded and redrawn.
func (m *MersenneTwister) Float64() float64 {
	for {
		if f := m.float53(); f != 0 {
			return f
		}
	}
}

// below returns a uniform integer in [0, n) by rejection over bitlen(n) bits.
func (m *MersenneTwister) below(n uint64) uint64 {
	k := uint(bits.Len64(n))
	r := m.Bits(k)
	for r >= n {
		r = m.Bits(k)
	}
	return r
}

// IntRange returns a uniform integer in [a, b].
func (m *MersenneTwister) IntRange(a, b int) int {
	if b < a {
		panic("auctus: IntRange called with empty range")
	}
	return a + int(m.below(uint64(b-a)+1))
}
