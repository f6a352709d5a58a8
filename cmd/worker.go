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

package cmd

import (
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/VIDA-NYU/auctus-sub001/kafka"
	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"
)

// WorkerMain is wrapped by NewWorkerCommand and only exported for testing
// purposes.
var WorkerMain *kafka.Main

// NewWorkerCommand returns a new cobra command wrapping WorkerMain. An
// interrupt closes the consumer, which lets the worker finish the message at
// hand and exit.
func NewWorkerCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	WorkerMain = kafka.NewMain()
	workerCommand := &cobra.Command{
		Use:   "worker",
		Short: "worker - sample datasets requested over Kafka into the cache",
		Long: `Consumes json sample requests like
  {"id": "datamart.upload.abc", "url": "s3://bucket/abc.csv", "size": 50}
from Kafka, samples each dataset and stores the sample in the cache under
its id and size. Requests whose sample is already cached are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if WorkerMain.NewConsumer == nil {
				WorkerMain.NewConsumer = func() (kafka.Consumer, error) {
					c, err := kafka.NewConsumer(WorkerMain.Hosts, WorkerMain.Group, WorkerMain.Topics, WorkerMain.Verbose)
					if err != nil {
						return nil, err
					}
					signals := make(chan os.Signal, 1)
					signal.Notify(signals, os.Interrupt)
					go func() {
						<-signals
						log.Println("interrupted, closing consumer")
						if err := c.Close(); err != nil {
							log.Printf("closing consumer: %v", err)
						}
					}()
					return c, nil
				}
			}
			return WorkerMain.Run()
		},
	}
	flags := workerCommand.Flags()
	err := commandeer.Flags(flags, WorkerMain)
	if err != nil {
		panic(err)
	}
	return workerCommand
}

func init() {
	subcommandFns["worker"] = NewWorkerCommand
}
