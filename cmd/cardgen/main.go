// Copyright The Cardgen Authors.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// cardgen generates health-card credential fixtures from FHIR bundles.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smarthealthcards/cardgen-go/faults"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &generateOpts{}
	cmd := &cobra.Command{
		Use:   "cardgen [flags] <bundle>...",
		Short: "Generate health-card credential fixtures from FHIR bundles",
		Long: `cardgen trims each FHIR bundle to the health-card profile, wraps it
in signed claims, and writes the full fixture set: trimmed bundle,
payload documents, signed token, card file, and per-chunk numeric
strings with QR images.

Bundles are read from local paths or http(s) URLs. A fault case
deliberately mis-constructs one pipeline stage to produce negative
fixtures for verifier conformance testing; run "cardgen cases" to list
them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.sources = args
			return runGenerate(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path of config.json")
	cmd.Flags().StringVarP(&opts.keysPath, "keys", "k", "", "path of the signing JWK-set document")
	cmd.Flags().StringVarP(&opts.outputDir, "out", "o", "", "output directory for artifact files")
	cmd.Flags().StringVar(&opts.issuer, "issuer", "", "issuer URL stamped into the credentials")
	cmd.Flags().StringVar(&opts.faultCase, "case", "", "fault-injection case (default: correct pipeline)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline progress to stderr")

	cmd.AddCommand(newCasesCmd())
	return cmd
}

func newCasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cases",
		Short: "List the known fault-injection cases",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, c := range faults.Cases() {
				if c == faults.None {
					fmt.Fprintln(cmd.OutOrStdout(), "(none)")
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(c))
			}
		},
	}
}
