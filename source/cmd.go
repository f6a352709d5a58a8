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
	"io"
	"os"

	"github.com/VIDA-NYU/auctus-sub001"
	"github.com/pkg/errors"
)

// Main contains the configuration for sampling a single dataset.
type Main struct {
	Source     string `help:"CSV to sample: a file path, file://, http(s):// or s3:// location. Use - for stdin."`
	Dest       string `help:"Where to write the sample. Use - for stdout."`
	Size       int    `help:"Number of records to keep besides the header."`
	Encoding   string `help:"Text encoding of the source. The sample is always UTF-8."`
	Region     string `help:"AWS region for s3:// sources."`
	MaxRetries int    `help:"Attempts at fetching a remote source before giving up."`

	Stdin  io.Reader `flag:"-"`
	Stdout io.Writer `flag:"-"`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Source:     "-",
		Dest:       "-",
		Size:       auctus.DefaultSampleSize,
		Region:     "us-east-1",
		MaxRetries: 3,

		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
}

// Run samples Source into Dest.
func (m *Main) Run() error {
	if err := auctus.CheckSize(m.Size); err != nil {
		return err
	}
	opts := []auctus.Option{auctus.OptEncoding(m.Encoding)}

	if m.Source == "-" {
		return errors.Wrap(auctus.SampleStream(m.Stdin, m.Stdout, m.Size, opts...), "sampling stdin")
	}
	if IsLocal(m.Source) && m.Dest != "-" {
		return errors.Wrapf(auctus.SampleFile(LocalPath(m.Source), m.Dest, m.Size, opts...), "sampling %s", m.Source)
	}

	o, err := NewLocator(OptLocatorRegion(m.Region)).Locate(m.Source)
	if err != nil {
		return errors.Wrap(err, "locating source")
	}
	data, err := Sample(o, m.Size, m.MaxRetries, opts...)
	if err != nil {
		return err
	}
	if m.Dest == "-" {
		_, err = m.Stdout.Write(data)
		return errors.Wrap(err, "writing sample")
	}
	return errors.Wrap(auctus.WriteFileAtomic(m.Dest, data), "writing sample")
}
