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
	"bufio"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/VIDA-NYU/auctus-sub001/csv"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// DefaultSampleSize is the number of records, besides the header, kept in a
// preview when no size is given.
const DefaultSampleSize = 50

// MaxSampleSize is the largest size accepted from a request. The whole
// reservoir is held in memory, so a larger preview would buffer most of a
// big dataset.
const MaxSampleSize = 100000

// ErrSizeTooLarge is returned by CheckSize for sizes over MaxSampleSize.
var ErrSizeTooLarge = errors.Errorf("sample size must not exceed %d", MaxSampleSize)

// CheckSize validates a sample size coming from outside the process. Sample,
// SampleFile and SampleStream themselves accept any size which is not
// negative.
func CheckSize(size int) error {
	switch {
	case size < 0:
		return ErrInvalidSize
	case size > MaxSampleSize:
		return ErrSizeTooLarge
	}
	return nil
}

// Seed seeds the generator used by SampleFile and SampleStream. It is fixed
// so that the same input always yields the same preview; callers who want
// different samples should call Sample with their own Rand.
const Seed = 0

type options struct {
	encoding string
}

// Option is a functional option for SampleFile and SampleStream.
type Option func(*options)

// OptEncoding sets the text encoding of the input. The default is UTF-8,
// which is read without any conversion. The output is always UTF-8.
func OptEncoding(name string) Option {
	return func(o *options) {
		o.encoding = name
	}
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SampleFile writes a preview of the CSV file at src to dst: the header of
// src followed by a uniform sample of size of its other records. The output
// is written to a temporary file next to dst and renamed into place, so dst
// is either fully written or left as it was.
func SampleFile(src, dst string, size int, opts ...Option) error {
	if size < 0 {
		return ErrInvalidSize
	}
	o := newOptions(opts)

	records, err := sampleFile(src, size, o)
	if err != nil {
		return err
	}
	return writeFileAtomic(dst, func(w io.Writer) error {
		return csv.NewWriter(w).WriteAll(records)
	})
}

// sampleFile has the source open only for as long as sampling takes.
func sampleFile(src string, size int, o options) ([][]string, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, errors.Wrap(err, "opening source")
	}
	defer f.Close()
	r, err := maybeGunzip(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing %s", src)
	}
	return sampleReader(r, size, o)
}

// maybeGunzip decompresses r if it starts with the gzip magic number,
// whatever the file is called.
func maybeGunzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != 0x1f || magic[1] != 0x8b {
		return br, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, errors.Wrap(err, "reading gzip header")
	}
	return zr, nil
}

// SampleStream is like SampleFile, but reads the CSV input from r and writes
// the preview to w.
func SampleStream(r io.Reader, w io.Writer, size int, opts ...Option) error {
	if size < 0 {
		return ErrInvalidSize
	}
	records, err := sampleReader(r, size, newOptions(opts))
	if err != nil {
		return err
	}
	return errors.Wrap(csv.NewWriter(w).WriteAll(records), "writing sample")
}

func sampleReader(r io.Reader, size int, o options) ([][]string, error) {
	dr, err := csv.NewDecodingReader(r, o.encoding)
	if err != nil {
		return nil, errors.Wrap(err, "decoding source")
	}
	records, err := Sample(csv.NewReader(dr), size, NewMersenneTwister(Seed))
	if err != nil {
		return nil, errors.Wrap(err, "sampling")
	}
	return records, nil
}

// WriteFileAtomic writes data to dst through a temporary file in the same
// directory which is renamed over dst once complete.
func WriteFileAtomic(dst string, data []byte) error {
	return writeFileAtomic(dst, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func writeFileAtomic(dst string, write func(w io.Writer) error) (err error) {
	tmp, err := ioutil.TempFile(filepath.Dir(dst), "."+filepath.Base(dst)+".")
	if err != nil {
		return errors.Wrap(err, "creating temporary file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return errors.Wrap(err, "writing sample")
	}
	if err = tmp.Chmod(0644); err != nil {
		return errors.Wrap(err, "setting permissions")
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "syncing sample")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing sample")
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return errors.Wrap(err, "renaming sample into place")
	}
	return nil
}
