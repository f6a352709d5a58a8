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

// Package source opens datasets for sampling from local files, HTTP(S) URLs
// and S3 objects. Gzip compressed data is decompressed on the fly.
package source

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// ErrUnsupportedScheme is returned for locations whose scheme has no opener.
var ErrUnsupportedScheme = errors.New("unsupported location scheme")

// Opener is an interface to a resource which can be repeatedly Opened (and the
// returned ReadCloser can be subsequently read). Each call to Open should
// return a ReadCloser which reads from the beginning of the resource. In the
// case of an error while reading, Open will be called again to retry reading
// the entire resource.
type Opener interface {
	Open() (io.ReadCloser, error)
}

// OpenStringer is an Opener which also has a String method which should return
// the name of the resource being opened (e.g. a file or URL).
type OpenStringer interface {
	fmt.Stringer
	Opener
}

// Locator turns location strings into OpenStringers.
type Locator struct {
	region string
	client *http.Client
	s3     s3iface.S3API
}

// LocatorOption is a functional option for NewLocator.
type LocatorOption func(l *Locator)

// OptLocatorRegion sets the AWS region used for s3:// locations.
func OptLocatorRegion(region string) LocatorOption {
	return func(l *Locator) {
		l.region = region
	}
}

// OptLocatorS3Client sets the client used for s3:// locations. Without it a
// client is created from the default AWS session on first use.
func OptLocatorS3Client(client s3iface.S3API) LocatorOption {
	return func(l *Locator) {
		l.s3 = client
	}
}

// OptLocatorHTTPClient sets the client used for http:// and https://
// locations.
func OptLocatorHTTPClient(client *http.Client) LocatorOption {
	return func(l *Locator) {
		l.client = client
	}
}

// NewLocator returns a Locator with the options applied.
func NewLocator(opts ...LocatorOption) *Locator {
	l := &Locator{
		region: "us-east-1",
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns an OpenStringer for location, which is one of:
//
//   http://host/path or https://host/path
//   s3://bucket/key
//   file:///path or a bare file path
func (l *Locator) Locate(location string) (OpenStringer, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return &httpOpener{url: location, client: l.client}, nil
	case strings.HasPrefix(location, "s3://"):
		parts := strings.SplitN(strings.TrimPrefix(location, "s3://"), "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, errors.Errorf("s3 location '%s' must look like s3://bucket/key", location)
		}
		client, err := l.s3Client()
		if err != nil {
			return nil, errors.Wrap(err, "getting s3 client")
		}
		return &s3Opener{bucket: parts[0], key: parts[1], s3: client}, nil
	case strings.HasPrefix(location, "file://"):
		return fileOpener(strings.TrimPrefix(location, "file://")), nil
	case strings.Contains(location, "://"):
		return nil, errors.Wrapf(ErrUnsupportedScheme, "locating '%s'", location)
	}
	return fileOpener(location), nil
}

// Open locates and opens location.
func (l *Locator) Open(location string) (io.ReadCloser, error) {
	o, err := l.Locate(location)
	if err != nil {
		return nil, err
	}
	return o.Open()
}

func (l *Locator) s3Client() (s3iface.S3API, error) {
	if l.s3 != nil {
		return l.s3, nil
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(l.region)},
	)
	if err != nil {
		return nil, errors.Wrap(err, "getting new session")
	}
	l.s3 = s3.New(sess)
	return l.s3, nil
}

// IsLocal reports whether location names a file on this machine.
func IsLocal(location string) bool {
	return strings.HasPrefix(location, "file://") || !strings.Contains(location, "://")
}

// LocalPath returns the file path of a local location.
func LocalPath(location string) string {
	return strings.TrimPrefix(location, "file://")
}

type fileOpener string

func (f fileOpener) Open() (io.ReadCloser, error) {
	file, err := os.Open(string(f))
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	return maybeGunzip(file)
}

func (f fileOpener) String() string {
	return string(f)
}

type httpOpener struct {
	url    string
	client *http.Client
}

func (h *httpOpener) Open() (io.ReadCloser, error) {
	resp, err := h.client.Get(h.url)
	if err != nil {
		return nil, errors.Wrap(err, "getting via http")
	}
	if resp.StatusCode >= 300 {
		bod, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, errors.Errorf("getting via http, code: %d, resp: %s", resp.StatusCode, bod)
	}
	return maybeGunzip(resp.Body)
}

func (h *httpOpener) String() string {
	return h.url
}

type s3Opener struct {
	bucket string
	key    string
	s3     s3iface.S3API
}

func (o *s3Opener) Open() (io.ReadCloser, error) {
	result, err := o.s3.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %v", o)
	}
	return maybeGunzip(result.Body)
}

func (o *s3Opener) String() string {
	return "s3://" + o.bucket + "/" + o.key
}

// bufferedReadCloser reads through a bufio.Reader and closes the original.
type bufferedReadCloser struct {
	*bufio.Reader
	io.Closer
}

type gzipReadCloser struct {
	*gzip.Reader
	body io.Closer
}

// Close closes the gzip stream and the stream beneath it.
func (g *gzipReadCloser) Close() error {
	gerr := g.Reader.Close()
	berr := g.body.Close()
	if gerr != nil {
		return errors.Wrap(gerr, "closing gzip reader")
	}
	return berr
}

// maybeGunzip wraps rc in a gzip reader if it starts with the gzip magic
// number.
func maybeGunzip(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != 0x1f || magic[1] != 0x8b {
		// Short or unreadable input is left for the CSV reader to judge.
		return bufferedReadCloser{Reader: br, Closer: rc}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		rc.Close()
		return nil, errors.Wrap(err, "reading gzip header")
	}
	return &gzipReadCloser{Reader: zr, body: rc}, nil
}
