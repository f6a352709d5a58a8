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

package kafka

import (
	"encoding/json"

	"github.com/VIDA-NYU/auctus-sub001"
	"github.com/VIDA-NYU/auctus-sub001/cache"
	"github.com/pkg/errors"
)

// Request asks for the preview of a dataset to be computed and cached.
type Request struct {
	// ID is the dataset identifier the sample is cached under.
	ID string `json:"id"`
	// URL locates the CSV; see source.Locator for the accepted schemes.
	URL string `json:"url"`
	// Size is the number of records kept besides the header. 0 means
	// auctus.DefaultSampleSize; at most auctus.MaxSampleSize.
	Size     int    `json:"size,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

// Encode marshals the request to json.
func (r Request) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// Length returns the length of the marshalled json.
func (r Request) Length() int {
	bytes, _ := r.Encode()
	return len(bytes)
}

// Key is where the sample for r is cached.
func (r Request) Key() cache.Key {
	return cache.Key{Dataset: r.ID, Size: r.Size}
}

// DecodeRequest unmarshals and validates a request, filling in the default
// size. Sizes over auctus.MaxSampleSize are refused.
func DecodeRequest(value []byte) (Request, error) {
	var r Request
	if err := json.Unmarshal(value, &r); err != nil {
		return r, errors.Wrap(err, "unmarshaling json")
	}
	switch {
	case r.ID == "":
		return r, errors.New("request has no dataset id")
	case r.URL == "":
		return r, errors.Errorf("request for '%s' has no url", r.ID)
	case r.Size == 0:
		r.Size = auctus.DefaultSampleSize
	}
	return r, auctus.CheckSize(r.Size)
}
