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

package source_test

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/VIDA-NYU/auctus-sub001"
	"github.com/VIDA-NYU/auctus-sub001/csv"
	"github.com/VIDA-NYU/auctus-sub001/source"
	"github.com/VIDA-NYU/auctus-sub001/test"
	"github.com/pkg/errors"
)

// flaky fails its first failures opens, then serves content.
type flaky struct {
	content  string
	failures int
	opens    int
}

func (f *flaky) Open() (io.ReadCloser, error) {
	f.opens++
	if f.opens <= f.failures {
		return nil, errors.New("connection reset")
	}
	return ioutil.NopCloser(strings.NewReader(f.content)), nil
}

func (f *flaky) String() string { return "flaky" }

func TestSampleRetries(t *testing.T) {
	f := &flaky{content: "a,b\n1,2\n", failures: 2}
	got, err := source.Sample(f, 5, 3)
	test.ErrNil(t, err, "sampling flaky source")
	test.MustBe(t, "a,b\r\n1,2\r\n", string(got))
	test.MustBe(t, 3, f.opens, "opens")

	f = &flaky{content: "a\n", failures: 3}
	_, err = source.Sample(f, 5, 3)
	if err == nil || !strings.Contains(err.Error(), "tried 3 times") {
		t.Fatalf("expected to give up after 3 tries, got %v", err)
	}
	test.MustBe(t, 3, f.opens, "opens")
}

func TestSamplePermanentErrors(t *testing.T) {
	f := &flaky{content: "a\n\"open\n"}
	_, err := source.Sample(f, 5, 3)
	if errors.Cause(err) != csv.ErrUnterminatedQuote {
		t.Fatalf("expected unterminated quote, got %v", err)
	}
	test.MustBe(t, 1, f.opens, "opens after parse error")

	f = &flaky{content: "a\n"}
	_, err = source.Sample(f, 5, 3, auctus.OptEncoding("klingon"))
	if errors.Cause(err) != csv.ErrUnknownEncoding {
		t.Fatalf("expected unknown encoding, got %v", err)
	}
	test.MustBe(t, 1, f.opens, "opens after encoding error")

	f = &flaky{content: "a\n"}
	_, err = source.Sample(f, -1, 3)
	if errors.Cause(err) != auctus.ErrInvalidSize {
		t.Fatalf("expected invalid size, got %v", err)
	}
	test.MustBe(t, 0, f.opens, "opens after invalid size")
}

func TestMainStdio(t *testing.T) {
	m := source.NewMain()
	m.Stdin = strings.NewReader("name\nJames\nLinda\n")
	out := &bytes.Buffer{}
	m.Stdout = out
	m.Size = 1
	test.ErrNil(t, m.Run(), "running")
	recs, err := csv.NewReader(out).ReadAll()
	test.ErrNil(t, err, "reading output")
	if len(recs) != 2 || recs[0][0] != "name" {
		t.Fatalf("unexpected sample %v", recs)
	}
}

func TestMainFiles(t *testing.T) {
	dir := test.MustTempDir(t)
	defer os.RemoveAll(dir)
	plain := test.MustWriteFile(t, dir, "in.csv", data)
	zipped := test.MustWriteFile(t, dir, "in.csv.gz", string(gzipped(t, data)))
	unsuffixed := test.MustWriteFile(t, dir, "data.csv", string(gzipped(t, data)))

	for _, src := range []string{plain, "file://" + plain, zipped, unsuffixed} {
		m := source.NewMain()
		m.Source = src
		m.Dest = filepath.Join(dir, "out.csv")
		test.ErrNil(t, m.Run(), "sampling "+src)
		test.MustBe(t, "name,age\r\nJames,30\r\nLinda,42\r\n", test.MustReadFile(t, m.Dest), src)
		test.ErrNil(t, os.Remove(m.Dest), "removing output")
	}

	m := source.NewMain()
	m.Source = zipped
	out := &bytes.Buffer{}
	m.Stdout = out
	test.ErrNil(t, m.Run(), "sampling to stdout")
	test.MustBe(t, "name,age\r\nJames,30\r\nLinda,42\r\n", out.String())
}

func TestMainInvalid(t *testing.T) {
	m := source.NewMain()
	m.Size = -1
	if err := m.Run(); err != auctus.ErrInvalidSize {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}

	m = source.NewMain()
	m.Size = auctus.MaxSampleSize + 1
	if err := m.Run(); err != auctus.ErrSizeTooLarge {
		t.Fatalf("expected ErrSizeTooLarge, got %v", err)
	}

	m = source.NewMain()
	m.Source = "gopher://old/data.csv"
	if err := m.Run(); errors.Cause(err) != source.ErrUnsupportedScheme {
		t.Fatalf("expected ErrUnsupportedScheme, got %v", err)
	}
}
