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

/*
Package auctus computes the previews shown for datasets: a small, uniform
random sample of a CSV's records with the header row kept as the first row.

The sampling pipeline has three stages.

1. Reading

   The csv package reads records one at a time, never holding more of the
   input than the current record. Input is UTF-8 unless another encoding is
   requested with OptEncoding.

2. Sampling

   Sample keeps the header and a reservoir of k records using Algorithm L,
   which draws how many records to skip instead of one random number per
   record. The randomness comes from MersenneTwister seeded with Seed, so the
   same input always gives the same preview.

3. Writing

   SampleFile replaces its destination atomically: the sample goes to a
   temporary file next to the destination which is renamed over it once
   complete. A failure at any stage leaves the destination untouched.

The source, cache and kafka packages build on this to sample remote datasets,
cache the results and serve sample requests from Kafka; cmd ties them
together into the auctus command.
*/
package auctus
