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

package source

import (
	"bytes"

	"github.com/VIDA-NYU/auctus-sub001"
	"github.com/VIDA-NYU/auctus-sub001/csv"
	"github.com/pkg/errors"
)

// Sample returns the CSV encoded preview of the dataset behind o. If opening
// or reading o fails, it is reopened and sampled again from the start, up to
// tries attempts in total. Malformed data and bad arguments fail at once.
func Sample(o OpenStringer, size, tries int, opts ...auctus.Option) ([]byte, error) {
	if tries < 1 {
		tries = 1
	}
	var err error
	for try := 0; try < tries; try++ {
		var data []byte
		data, err = sampleOnce(o, size, opts)
		if err == nil {
			return data, nil
		}
		if permanent(err) {
			return nil, errors.Wrapf(err, "sampling '%s'", o)
		}
	}
	return nil, errors.Wrapf(err, "couldn't sample '%s' - tried %d times, latest", o, tries)
}

func sampleOnce(o OpenStringer, size int, opts []auctus.Option) ([]byte, error) {
	if size < 0 {
		return nil, auctus.ErrInvalidSize
	}
	rc, err := o.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening")
	}
	defer rc.Close()
	buf := &bytes.Buffer{}
	if err := auctus.SampleStream(rc, buf, size, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func permanent(err error) bool {
	switch errors.Cause(err) {
	case auctus.ErrInvalidSize, auctus.ErrSizeTooLarge, csv.ErrUnknownEncoding, csv.ErrUnterminatedQuote, ErrUnsupportedScheme:
		return true
	}
	return false
}
