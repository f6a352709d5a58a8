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

package csv_test

import (
	"bytes"
	"testing"

	"github.com/VIDA-NYU/auctus-sub001/csv"
	"github.com/google/go-cmp/cmp"
)

func TestWriter(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
		exp     string
	}{
		{name: "none", records: nil, exp: ""},
		{name: "plain", records: [][]string{{"name", "age"}, {"James"}}, exp: "name,age\r\nJames\r\n"},
		{name: "comma", records: [][]string{{"a,b", "c"}}, exp: "\"a,b\",c\r\n"},
		{name: "quote", records: [][]string{{`say "hi"`}}, exp: "\"say \"\"hi\"\"\"\r\n"},
		{name: "newline kept", records: [][]string{{"x\ny", "z\r\n"}}, exp: "\"x\ny\",\"z\r\n\"\r\n"},
		{name: "leading space unquoted", records: [][]string{{" a", "b "}}, exp: " a,b \r\n"},
		{name: "empty fields", records: [][]string{{"", ""}, {"a", ""}}, exp: ",\r\na,\r\n"},
		{name: "lone empty field", records: [][]string{{""}}, exp: "\"\"\r\n"},
		{name: "empty record", records: [][]string{{}}, exp: "\r\n"},
		{name: "utf8", records: [][]string{{"José", "año"}}, exp: "José,año\r\n"},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := csv.NewWriter(buf).WriteAll(tst.records); err != nil {
				t.Fatalf("writing: %v", err)
			}
			if buf.String() != tst.exp {
				t.Fatalf("expected %q, got %q", tst.exp, buf.String())
			}
		})
	}
}

func TestWriterRoundTrip(t *testing.T) {
	records := [][]string{
		{"name", "notes"},
		{""},
		{},
		{"a,b", `"quoted"`},
		{"multi\nline", "x"},
	}
	buf := &bytes.Buffer{}
	if err := csv.NewWriter(buf).WriteAll(records); err != nil {
		t.Fatalf("writing: %v", err)
	}
	got, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if diff := cmp.Diff(records, got); diff != "" {
		t.Fatalf("round trip changed records (-want +got):\n%s", diff)
	}
}

func TestWriterUnflushed(t *testing.T) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"a"}); err != nil {
		t.Fatalf("writing: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected buffered output, got %q", buf.String())
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flushing: %v", err)
	}
	if buf.String() != "a\r\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
