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

// Package kafkagen publishes sample requests for the kafka worker.
package kafkagen

import (
	"log"

	"github.com/Shopify/sarama"
	"github.com/VIDA-NYU/auctus-sub001"
	"github.com/VIDA-NYU/auctus-sub001/kafka"
	"github.com/pkg/errors"
)

// Publisher sends requests to a single topic.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher returns a Publisher sending to topic through producer.
func NewPublisher(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// Publish validates r and sends it, keyed by dataset id so that requests for
// the same dataset land on the same partition.
func (p *Publisher) Publish(r kafka.Request) (partition int32, offset int64, err error) {
	if r.ID == "" || r.URL == "" {
		return 0, 0, errors.Errorf("request needs an id and a url: %+v", r)
	}
	if err := auctus.CheckSize(r.Size); err != nil {
		return 0, 0, err
	}
	msg := &sarama.ProducerMessage{Topic: p.topic, Key: sarama.StringEncoder(r.ID), Value: r}
	partition, offset, err = p.producer.SendMessage(msg)
	return partition, offset, errors.Wrap(err, "sending message")
}

// Close closes the underlying producer.
func (p *Publisher) Close() error {
	return errors.Wrap(p.producer.Close(), "closing producer")
}

// Main holds the configuration for publishing one sample request.
type Main struct {
	Hosts    []string `help:"Comma separated list of Kafka hosts and ports"`
	Topic    string   `help:"Kafka topic the workers consume"`
	ID       string   `help:"Dataset id the sample is cached under."`
	URL      string   `help:"Location of the dataset's CSV."`
	Size     int      `help:"Number of records to keep besides the header."`
	Encoding string   `help:"Text encoding of the dataset."`

	// NewProducer replaces the Kafka producer, if set.
	NewProducer func() (sarama.SyncProducer, error) `flag:"-"`
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Hosts: []string{"localhost:9092"},
		Topic: "samples",
		Size:  auctus.DefaultSampleSize,
	}
}

// Run publishes the request described by m.
func (m *Main) Run() error {
	newProducer := m.NewProducer
	if newProducer == nil {
		newProducer = func() (sarama.SyncProducer, error) {
			conf := sarama.NewConfig()
			conf.Version = sarama.V0_10_0_0
			conf.Producer.Return.Successes = true
			return sarama.NewSyncProducer(m.Hosts, conf)
		}
	}
	producer, err := newProducer()
	if err != nil {
		return errors.Wrap(err, "getting new producer")
	}
	p := NewPublisher(producer, m.Topic)
	defer p.Close()

	r := kafka.Request{ID: m.ID, URL: m.URL, Size: m.Size, Encoding: m.Encoding}
	partition, offset, err := p.Publish(r)
	if err != nil {
		return errors.Wrapf(err, "publishing request for %s", m.ID)
	}
	log.Printf("requested sample of %s at %s/%d/%d", m.ID, m.Topic, partition, offset)
	return nil
}
