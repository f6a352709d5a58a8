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

package csv

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Writer writes records terminated by "\r\n". Only fields containing a comma,
// a quote or a line break are quoted. Field contents are never rewritten, so
// line breaks inside quoted fields are kept exactly.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w: bufio.NewWriter(w),
	}
}

// Write writes a single record. Writes are buffered; call Flush to make sure
// they reach the underlying io.Writer.
func (w *Writer) Write(record []string) error {
	// A lone empty field would otherwise become a blank line, which Reader
	// reads as a record with no fields.
	if len(record) == 1 && record[0] == "" {
		_, err := w.w.WriteString("\"\"\r\n")
		return err
	}
	for n, field := range record {
		if n > 0 {
			if err := w.w.WriteByte(','); err != nil {
				return err
			}
		}
		if !fieldNeedsQuotes(field) {
			if _, err := w.w.WriteString(field); err != nil {
				return err
			}
			continue
		}
		if err := w.w.WriteByte('"'); err != nil {
			return err
		}
		if _, err := w.w.WriteString(strings.Replace(field, `"`, `""`, -1)); err != nil {
			return err
		}
		if err := w.w.WriteByte('"'); err != nil {
			return err
		}
	}
	_, err := w.w.WriteString("\r\n")
	return err
}

// WriteAll writes records and flushes.
func (w *Writer) WriteAll(records [][]string) error {
	for i, rec := range records {
		if err := w.Write(rec); err != nil {
			return errors.Wrapf(err, "writing record %d", i+1)
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return errors.Wrap(w.w.Flush(), "flushing")
}

func fieldNeedsQuotes(field string) bool {
	return strings.ContainsAny(field, ",\"\r\n")
}
