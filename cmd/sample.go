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
	"time"

	"github.com/VIDA-NYU/auctus-sub001/source"
	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"
)

// SampleMain is wrapped by NewSampleCommand and only exported for testing
// purposes.
var SampleMain *source.Main

// NewSampleCommand returns a new cobra command wrapping SampleMain.
func NewSampleCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	SampleMain = source.NewMain()
	SampleMain.Stdin = stdin
	SampleMain.Stdout = stdout
	sampleCommand := &cobra.Command{
		Use:   "sample",
		Short: "sample - write a uniform sample of a CSV keeping its header",
		Long: `Reads a CSV dataset and writes its header followed by a uniform
random sample of its records. The same input always gives the same sample.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err := SampleMain.Run()
			if err != nil {
				return err
			}
			if SampleMain.Dest != "-" {
				log.Println("Done: ", time.Since(start))
			}
			return nil
		},
	}
	flags := sampleCommand.Flags()
	err := commandeer.Flags(flags, SampleMain)
	if err != nil {
		panic(err)
	}
	return sampleCommand
}

func init() {
	subcommandFns["sample"] = NewSampleCommand
}
