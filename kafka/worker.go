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
	"time"

	"github.com/Shopify/sarama"
	"github.com/VIDA-NYU/auctus-sub001"
	"github.com/VIDA-NYU/auctus-sub001/cache"
	"github.com/VIDA-NYU/auctus-sub001/source"
	"github.com/pkg/errors"
)

// Worker samples the datasets named by requests and caches the results.
type Worker struct {
	Cache   cache.Store
	Locator *source.Locator
	// Tries is the number of attempts at sampling a dataset.
	Tries int
	// MaxMsgs stops Run after this many messages. 0 means no limit.
	MaxMsgs int

	Stats auctus.Statter
	Log   auctus.Logger

	now func() time.Time
}

// NewWorker returns a Worker caching into store with a default Locator, no
// logging and no stats.
func NewWorker(store cache.Store) *Worker {
	return &Worker{
		Cache:   store,
		Locator: source.NewLocator(),
		Tries:   3,
		Stats:   auctus.NopStatter{},
		Log:     auctus.NopLogger{},
		now:     time.Now,
	}
}

// Handle processes a single message. A request whose sample is already cached
// is not sampled again.
func (w *Worker) Handle(msg *sarama.ConsumerMessage) error {
	w.Stats.Count("requests", 1, 1)
	err := w.handle(msg)
	if err != nil {
		w.Stats.Count("failed", 1, 1)
	}
	return err
}

func (w *Worker) handle(msg *sarama.ConsumerMessage) error {
	req, err := DecodeRequest(msg.Value)
	if err != nil {
		return errors.Wrap(err, "decoding request")
	}
	key := req.Key()
	_, err = w.Cache.Get(key)
	if err == nil {
		w.Stats.Count("cached", 1, 1)
		w.Log.Debugf("sample for %s already cached", key)
		return nil
	} else if err != cache.ErrNotFound {
		return errors.Wrapf(err, "checking cache for %s", key)
	}

	o, err := w.Locator.Locate(req.URL)
	if err != nil {
		return errors.Wrapf(err, "locating %s", key)
	}
	start := time.Now()
	data, err := source.Sample(o, req.Size, w.Tries, auctus.OptEncoding(req.Encoding))
	w.Stats.Timing("sample", time.Since(start), 1)
	if err != nil {
		return err
	}
	err = w.Cache.Put(key, cache.Entry{Data: data, Stored: w.now()})
	if err != nil {
		return errors.Wrap(err, "caching sample")
	}
	w.Stats.Count("sampled", 1, 1)
	w.Log.Debugf("sampled %s from %s", key, o)
	return nil
}

// Run handles the messages of c until its channel closes or MaxMsgs messages
// were handled. Failed requests are logged and not retried: every message's
// offset is marked once it has been handled.
func (w *Worker) Run(c Consumer) error {
	n := 0
	for msg := range c.Messages() {
		if err := w.Handle(msg); err != nil {
			w.Log.Printf("handling message %s/%d/%d: %v", msg.Topic, msg.Partition, msg.Offset, err)
		}
		c.MarkOffset(msg, "")
		n++
		if w.MaxMsgs > 0 && n >= w.MaxMsgs {
			break
		}
	}
	return nil
}
