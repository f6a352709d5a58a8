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

package auctus_test

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/VIDA-NYU/auctus-sub001"
	"github.com/VIDA-NYU/auctus-sub001/csv"
	"github.com/VIDA-NYU/auctus-sub001/test"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

func TestSampleFile(t *testing.T) {
	tests := []struct {
		name  string
		input string
		size  int
		exp   string
	}{
		{name: "undersample", input: "name,age\nJames\nLinda\nJohn\n", size: 5,
			exp: "name,age\r\nJames\r\nLinda\r\nJohn\r\n"},
		{name: "exact fill", input: "name,age\nJames\nLinda\nJohn\nJennifer\nMichael\n", size: 5,
			exp: "name,age\r\nJames\r\nLinda\r\nJohn\r\nJennifer\r\nMichael\r\n"},
		{name: "oversample", input: "name,age\n" + strings.Join(names, "\n") + "\n", size: 5,
			exp: "name,age\r\nThomas\r\nLisa\r\nSusan\r\nWilliam\r\nMichael\r\n"},
		{name: "oversample short", input: "name,age\n" + strings.Join(names[:9], "\n") + "\n", size: 5,
			exp: "name,age\r\nJames\r\nLinda\r\nSusan\r\nWilliam\r\nMichael\r\n"},
		{name: "empty body", input: "name,age\n", size: 5, exp: "name,age\r\n"},
		{name: "empty input", input: "", size: 5, exp: ""},
		{name: "zero size", input: "name,age\nJames\nLinda\n", size: 0, exp: "name,age\r\n"},
		{name: "quoting", input: "a,b\n\"x,y\",\"say \"\"hi\"\"\"\r\n", size: 5,
			exp: "a,b\r\n\"x,y\",\"say \"\"hi\"\"\"\r\n"},
		{name: "blank lines", input: "h\na\n\nb\n\n\n", size: 5, exp: "h\r\na\r\n\r\nb\r\n"},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			dir := test.MustTempDir(t)
			defer os.RemoveAll(dir)
			src := test.MustWriteFile(t, dir, "src.csv", tst.input)
			dst := filepath.Join(dir, "dst.csv")

			if err := auctus.SampleFile(src, dst, tst.size); err != nil {
				t.Fatalf("sampling file: %v", err)
			}
			got := test.MustReadFile(t, dst)
			if got != tst.exp {
				t.Fatalf("expected %q, got %q", tst.exp, got)
			}
		})
	}
}

func TestSampleFileDeterministic(t *testing.T) {
	dir := test.MustTempDir(t)
	defer os.RemoveAll(dir)
	src := test.MustWriteFile(t, dir, "src.csv", "n\n"+strings.Join(numbers(5000), "\n"))
	dst1, dst2 := filepath.Join(dir, "1.csv"), filepath.Join(dir, "2.csv")

	test.ErrNil(t, auctus.SampleFile(src, dst1, auctus.DefaultSampleSize), "first sample")
	test.ErrNil(t, auctus.SampleFile(src, dst2, auctus.DefaultSampleSize), "second sample")
	out1, out2 := test.MustReadFile(t, dst1), test.MustReadFile(t, dst2)
	if out1 != out2 {
		t.Fatalf("same input sampled differently:\n%s\n%s", out1, out2)
	}
	recs, err := csv.NewReader(strings.NewReader(out1)).ReadAll()
	test.ErrNil(t, err, "reading sample")
	if len(recs) != auctus.DefaultSampleSize+1 {
		t.Fatalf("expected %d records, got %d", auctus.DefaultSampleSize+1, len(recs))
	}
}

func TestSampleFileIdempotentWhenSmall(t *testing.T) {
	dir := test.MustTempDir(t)
	defer os.RemoveAll(dir)
	src := test.MustWriteFile(t, dir, "src.csv", "a,b\n1,\"x\ny\"\n2,\n\"\"\n")
	once, twice := filepath.Join(dir, "once.csv"), filepath.Join(dir, "twice.csv")

	test.ErrNil(t, auctus.SampleFile(src, once, 10), "sampling once")
	test.ErrNil(t, auctus.SampleFile(once, twice, 10), "sampling twice")
	test.MustBe(t, test.MustReadFile(t, once), test.MustReadFile(t, twice), "resampled output")
}

func TestSampleFileInvalidSize(t *testing.T) {
	err := auctus.SampleFile("/does/not/exist.csv", "/does/not/exist/out.csv", -1)
	if err != auctus.ErrInvalidSize {
		t.Fatalf("expected ErrInvalidSize before any I/O, got %v", err)
	}
	err = auctus.SampleStream(strings.NewReader("a\n"), ioutil.Discard, -3)
	if err != auctus.ErrInvalidSize {
		t.Fatalf("expected ErrInvalidSize from SampleStream, got %v", err)
	}
}

func TestSampleFileMissingSource(t *testing.T) {
	dir := test.MustTempDir(t)
	defer os.RemoveAll(dir)
	err := auctus.SampleFile(filepath.Join(dir, "nope.csv"), filepath.Join(dir, "out.csv"), 5)
	if !os.IsNotExist(errors.Cause(err)) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.csv")); !os.IsNotExist(err) {
		t.Fatalf("destination should not exist, stat: %v", err)
	}
}

func TestSampleFileParseErrorLeavesDestination(t *testing.T) {
	dir := test.MustTempDir(t)
	defer os.RemoveAll(dir)
	src := test.MustWriteFile(t, dir, "src.csv", "a,b\n1,\"unterminated\n")
	dst := test.MustWriteFile(t, dir, "dst.csv", "previous\r\n")

	err := auctus.SampleFile(src, dst, 5)
	if errors.Cause(err) != csv.ErrUnterminatedQuote {
		t.Fatalf("expected unterminated quote, got %v", err)
	}
	test.MustBe(t, "previous\r\n", test.MustReadFile(t, dst), "destination")

	infos, err := ioutil.ReadDir(dir)
	test.ErrNil(t, err, "listing dir")
	if len(infos) != 2 {
		t.Fatalf("expected only src and dst in dir, got %d entries", len(infos))
	}
}

func TestSampleFileUnwritableDestination(t *testing.T) {
	dir := test.MustTempDir(t)
	defer os.RemoveAll(dir)
	src := test.MustWriteFile(t, dir, "src.csv", "a\n1\n")
	err := auctus.SampleFile(src, filepath.Join(dir, "missing", "dst.csv"), 5)
	if err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestSampleFileEncoding(t *testing.T) {
	dir := test.MustTempDir(t)
	defer os.RemoveAll(dir)
	src := test.MustWriteFile(t, dir, "src.csv", "nombre\nJos\xe9\n")
	dst := filepath.Join(dir, "dst.csv")

	test.ErrNil(t, auctus.SampleFile(src, dst, 5, auctus.OptEncoding("latin1")), "sampling latin1")
	test.MustBe(t, "nombre\r\nJosé\r\n", test.MustReadFile(t, dst), "decoded output")

	err := auctus.SampleFile(src, dst, 5, auctus.OptEncoding("klingon"))
	if err == nil {
		t.Fatal("expected unknown encoding to fail")
	}
}

func TestSampleStream(t *testing.T) {
	out := &bytes.Buffer{}
	err := auctus.SampleStream(strings.NewReader("name,age\n"+strings.Join(names, "\n")), out, 5)
	test.ErrNil(t, err, "sampling stream")
	test.MustBe(t, "name,age\r\nThomas\r\nLisa\r\nSusan\r\nWilliam\r\nMichael\r\n", out.String(), "stream output")
}

func TestSampleStreamBlankLines(t *testing.T) {
	out := &bytes.Buffer{}
	test.ErrNil(t, auctus.SampleStream(strings.NewReader("h\na\n\nb\n"), out, 5), "sampling stream")
	test.MustBe(t, "h\r\na\r\n\r\nb\r\n", out.String())
}

func TestSampleStreamMaxSize(t *testing.T) {
	out := &bytes.Buffer{}
	test.ErrNil(t, auctus.SampleStream(strings.NewReader("h\na\nb\n"), out, math.MaxInt64), "sampling stream")
	test.MustBe(t, "h\r\na\r\nb\r\n", out.String())
}

func TestSampleFileGzip(t *testing.T) {
	dir := test.MustTempDir(t)
	defer os.RemoveAll(dir)
	buf := &bytes.Buffer{}
	zw := gzip.NewWriter(buf)
	_, err := zw.Write([]byte("name,age\nJames,30\nLinda,42\n"))
	test.ErrNil(t, err, "compressing")
	test.ErrNil(t, zw.Close(), "closing gzip writer")
	// No .gz suffix; the content decides.
	src := test.MustWriteFile(t, dir, "data.csv", buf.String())
	dst := filepath.Join(dir, "out.csv")

	test.ErrNil(t, auctus.SampleFile(src, dst, 5), "sampling gzipped file")
	test.MustBe(t, "name,age\r\nJames,30\r\nLinda,42\r\n", test.MustReadFile(t, dst))

	broken := test.MustWriteFile(t, dir, "broken.csv", "\x1f\x8bnot gzip")
	if err := auctus.SampleFile(broken, dst, 5); err == nil {
		t.Fatal("expected error for corrupt gzip header")
	}
	test.MustBe(t, "name,age\r\nJames,30\r\nLinda,42\r\n", test.MustReadFile(t, dst), "destination after failure")
}

func TestCheckSize(t *testing.T) {
	for _, size := range []int{0, 1, auctus.DefaultSampleSize, auctus.MaxSampleSize} {
		test.ErrNil(t, auctus.CheckSize(size), fmt.Sprintf("size %d", size))
	}
	test.MustBe(t, auctus.ErrInvalidSize, auctus.CheckSize(-1))
	test.MustBe(t, auctus.ErrSizeTooLarge, auctus.CheckSize(auctus.MaxSampleSize+1))
	test.MustBe(t, auctus.ErrSizeTooLarge, auctus.CheckSize(math.MaxInt64))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := test.MustTempDir(t)
	defer os.RemoveAll(dir)
	dst := test.MustWriteFile(t, dir, "dst.csv", "old\r\n")

	test.ErrNil(t, auctus.WriteFileAtomic(dst, []byte("new\r\n")), "replacing")
	test.MustBe(t, "new\r\n", test.MustReadFile(t, dst))
	info, err := os.Stat(dst)
	test.ErrNil(t, err, "stat")
	test.MustBe(t, os.FileMode(0644), info.Mode().Perm(), "mode")

	infos, err := ioutil.ReadDir(dir)
	test.ErrNil(t, err, "listing dir")
	test.MustBe(t, 1, len(infos), "entries in dir")
}
