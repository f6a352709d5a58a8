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

// Package csv reads and writes the CSV dialect used for dataset previews:
// comma separated, double-quote quoted, with embedded quotes doubled.
//
// The Reader is lenient in the way most spreadsheet exports need: a quote in
// the middle of an unquoted field is kept as is, and text following a closing
// quote is appended to the field. The one hard failure is a quoted field that
// is still open when the input ends.
package csv

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// ErrUnterminatedQuote is the Err of a ParseError for a quoted field which is
// never closed.
var ErrUnterminatedQuote = errors.New("unterminated quoted field")

// ParseError describes where parsing failed.
type ParseError struct {
	StartLine int // line where the record starts
	Line      int // line where the error occurred
	Err       error
}

func (e *ParseError) Error() string {
	if e.StartLine != e.Line {
		return fmt.Sprintf("record on line %d: parse error on line %d: %v", e.StartLine, e.Line, e.Err)
	}
	return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
}

// Cause allows errors.Cause to reach Err.
func (e *ParseError) Cause() error { return e.Err }

type state int

const (
	stateFieldStart state = iota
	stateUnquoted
	stateQuoted
	stateQuoteInQuoted
)

// Reader reads records from a CSV encoded input. Line breaks may be "\n",
// "\r\n" or "\r"; inside a quoted field each of them reads as "\n". A blank
// line reads as a record with no fields, except at the end of the input where
// blank lines are dropped.
type Reader struct {
	r     *bufio.Reader
	line  int
	field bytes.Buffer

	// blank lines read ahead of next, not yet returned.
	blanks int
	next   []string
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:    bufio.NewReader(r),
		line: 1,
	}
}

// Read returns the next record, or io.EOF once the input is exhausted. A
// malformed record is reported as a *ParseError and is not returned.
func (r *Reader) Read() ([]string, error) {
	if r.blanks > 0 {
		r.blanks--
		return []string{}, nil
	}
	if r.next != nil {
		rec := r.next
		r.next = nil
		return rec, nil
	}
	rec, blanks, err := r.readRecord()
	if err != nil {
		return nil, err
	}
	if blanks > 0 {
		r.blanks, r.next = blanks-1, rec
		return []string{}, nil
	}
	return rec, nil
}

// readRecord reads the next non-blank record and counts the blank lines
// before it. Blank lines followed only by the end of input are not counted.
func (r *Reader) readRecord() (record []string, blanks int, err error) {
	startLine := r.line
	blank := true
	st := stateFieldStart
	r.field.Reset()
	for {
		c, err := r.r.ReadByte()
		if err == io.EOF {
			if st == stateQuoted {
				return nil, 0, &ParseError{StartLine: startLine, Line: r.line, Err: ErrUnterminatedQuote}
			}
			if blank {
				return nil, 0, io.EOF
			}
			return append(record, r.field.String()), blanks, nil
		} else if err != nil {
			return nil, 0, errors.Wrapf(err, "reading line %d", r.line)
		}

		switch st {
		case stateQuoted:
			switch c {
			case '"':
				st = stateQuoteInQuoted
			case '\r', '\n':
				r.endLine(c)
				r.field.WriteByte('\n')
			default:
				r.field.WriteByte(c)
			}
			continue
		case stateQuoteInQuoted:
			if c == '"' {
				r.field.WriteByte('"')
				st = stateQuoted
				continue
			}
			st = stateUnquoted
		}

		switch c {
		case ',':
			record = append(record, r.field.String())
			r.field.Reset()
			st = stateFieldStart
			blank = false
		case '\r', '\n':
			r.endLine(c)
			if blank {
				blanks++
				startLine = r.line
				continue
			}
			return append(record, r.field.String()), blanks, nil
		case '"':
			if st == stateFieldStart {
				st = stateQuoted
			} else {
				r.field.WriteByte(c)
			}
			blank = false
		default:
			r.field.WriteByte(c)
			st = stateUnquoted
			blank = false
		}
	}
}

// ReadAll reads all remaining records.
func (r *Reader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return records, nil
		} else if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// endLine consumes the "\n" of a "\r\n" pair and advances the line count.
func (r *Reader) endLine(c byte) {
	if c == '\r' {
		if next, err := r.r.Peek(1); err == nil && next[0] == '\n' {
			_, _ = r.r.ReadByte()
		}
	}
	r.line++
}
