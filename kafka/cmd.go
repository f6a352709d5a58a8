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
	"log"
	"os"

	"github.com/VIDA-NYU/auctus-sub001"
	"github.com/VIDA-NYU/auctus-sub001/cache"
	"github.com/VIDA-NYU/auctus-sub001/source"
	"github.com/VIDA-NYU/auctus-sub001/termstat"
	"github.com/pkg/errors"
)

// Main holds the configuration of a sampling worker.
type Main struct {
	Hosts      []string `help:"Comma separated list of Kafka hosts and ports"`
	Topics     []string `help:"Comma separated list of Kafka topics carrying sample requests"`
	Group      string   `help:"Kafka consumer group"`
	CachePath  string   `help:"Path of the sample cache."`
	CacheType  string   `help:"Cache backend: bolt or leveldb."`
	Region     string   `help:"AWS region for s3:// datasets."`
	MaxRetries int      `help:"Attempts at fetching a dataset before giving up on the request."`
	MaxMsgs    int      `help:"Exit after handling this many messages. 0 runs until the consumer is closed."`
	Verbose    bool     `help:"Log every request and Kafka client internals."`
	Stats      bool     `help:"Print request counters to stderr."`

	// NewConsumer replaces the Kafka consumer group, if set.
	NewConsumer func() (Consumer, error) `flag:"-"`
}

// NewMain returns a new Main with default values.
func NewMain() *Main {
	return &Main{
		Hosts:      []string{"localhost:9092"},
		Topics:     []string{"samples"},
		Group:      "auctus-samplers",
		CachePath:  "auctus-samples.db",
		CacheType:  "bolt",
		Region:     "us-east-1",
		MaxRetries: 3,
	}
}

// Run consumes requests until the consumer closes or MaxMsgs is reached.
func (m *Main) Run() (err error) {
	log.Printf("Running Main: %#v", m)
	store, err := cache.Open(m.CacheType, m.CachePath)
	if err != nil {
		return errors.Wrap(err, "opening cache")
	}
	defer func() {
		if cerr := store.Close(); err == nil {
			err = errors.Wrap(cerr, "closing cache")
		}
	}()

	newConsumer := m.NewConsumer
	if newConsumer == nil {
		newConsumer = func() (Consumer, error) {
			return NewConsumer(m.Hosts, m.Group, m.Topics, m.Verbose)
		}
	}
	consumer, err := newConsumer()
	if err != nil {
		return errors.Wrap(err, "opening kafka consumer")
	}
	defer consumer.Close()

	w := NewWorker(store)
	w.Locator = source.NewLocator(source.OptLocatorRegion(m.Region))
	w.Tries = m.MaxRetries
	w.MaxMsgs = m.MaxMsgs
	logger := log.New(os.Stderr, "", log.LstdFlags)
	if m.Verbose {
		w.Log = auctus.VerboseLogger{Logger: logger}
	} else {
		w.Log = auctus.StdLogger{Logger: logger}
	}
	if m.Stats {
		stats := termstat.NewCollector(os.Stderr)
		defer stats.Stop()
		w.Stats = stats
	}
	return errors.Wrap(w.Run(consumer), "running worker")
}
