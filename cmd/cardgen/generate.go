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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"

	cardgen "github.com/smarthealthcards/cardgen-go"
	"github.com/smarthealthcards/cardgen-go/config"
	"github.com/smarthealthcards/cardgen-go/faults"
	"github.com/smarthealthcards/cardgen-go/fhir"
	"github.com/smarthealthcards/cardgen-go/internal/file"
	"github.com/smarthealthcards/cardgen-go/jws"
	"github.com/smarthealthcards/cardgen-go/log"
)

type generateOpts struct {
	configPath string
	keysPath   string
	outputDir  string
	issuer     string
	faultCase  string
	verbose    bool
	sources    []string
}

// manifest is the index document linking every artifact of a run.
type manifest struct {
	Case     string            `json:"case,omitempty"`
	Issuer   string            `json:"issuer"`
	Examples []manifestExample `json:"examples"`
}

type manifestExample struct {
	Source string         `json:"source"`
	Error  string         `json:"error,omitempty"`
	Files  []manifestFile `json:"files,omitempty"`
}

type manifestFile struct {
	Name   string `json:"name"`
	Digest string `json:"digest"`
}

func runGenerate(ctx context.Context, opts *generateOpts) error {
	if opts.verbose {
		ctx = log.WithLogger(ctx, stderrLogger{})
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.keysPath == "" {
		opts.keysPath = cfg.Keys
	}
	if opts.keysPath == "" {
		return &cardgen.KeyMaterialError{Msg: "no key set given (use --keys or config.json)"}
	}
	if opts.outputDir == "" {
		opts.outputDir = cfg.OutputDir
	}
	if opts.issuer == "" {
		opts.issuer = cfg.Issuer
	}

	keys, err := jws.LoadKeySet(opts.keysPath)
	if err != nil {
		return &cardgen.KeyMaterialError{Msg: err.Error()}
	}
	gen, err := cardgen.New(keys, cardgen.Options{
		Case:             faults.Case(opts.faultCase),
		Issuer:           opts.issuer,
		SingleChunkLimit: cfg.SingleChunkLimit,
		ChunkLimit:       cfg.ChunkLimit,
	})
	if err != nil {
		return err
	}

	index := manifest{Case: opts.faultCase, Issuer: gen.Params().Issuer}

	// Fetch failures and per-bundle pipeline failures abort only the
	// affected bundle.
	bundles := make([]fhir.Bundle, len(opts.sources))
	fetchErrs := make([]error, len(opts.sources))
	for i, src := range opts.sources {
		bundles[i], fetchErrs[i] = fetchBundle(ctx, src)
	}

	healthy := make([]fhir.Bundle, 0, len(bundles))
	slots := make([]int, 0, len(bundles))
	for i, b := range bundles {
		if fetchErrs[i] == nil {
			healthy = append(healthy, b)
			slots = append(slots, i)
		}
	}

	results, genErr := gen.GenerateAll(ctx, healthy)
	if results == nil && genErr != nil {
		return genErr
	}

	artifacts := make([]*cardgen.Artifacts, len(bundles))
	for j, slot := range slots {
		artifacts[slot] = results[j]
	}

	failures := 0
	for i, src := range opts.sources {
		example := manifestExample{Source: src}
		switch {
		case fetchErrs[i] != nil:
			example.Error = fetchErrs[i].Error()
			failures++
		case artifacts[i] == nil:
			example.Error = genErr.Error()
			failures++
		default:
			example.Files, err = writeArtifacts(opts.outputDir, i, artifacts[i])
			if err != nil {
				return err
			}
		}
		index.Examples = append(index.Examples, example)
	}

	if err := file.Save(filepath.Join(opts.outputDir, "manifest.json"), &index); err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d bundles failed", failures, len(opts.sources))
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.NewConfig(), nil
	}
	return config.LoadConfig(path)
}

// fetchBundle reads a bundle from a local path or an http(s) URL.
func fetchBundle(ctx context.Context, src string) (fhir.Bundle, error) {
	data, err := fetch(ctx, src)
	if err != nil {
		return nil, &cardgen.SourceFetchError{Msg: err.Error()}
	}
	bundle, err := fhir.ParseBundle(data)
	if err != nil {
		return nil, &cardgen.SourceFetchError{Msg: fmt.Sprintf("%s: %v", src, err)}
	}
	return bundle, nil
}

func fetch(ctx context.Context, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", src, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// writeArtifacts writes one bundle's fixture files and returns their
// manifest entries.
func writeArtifacts(dir string, index int, a *cardgen.Artifacts) ([]manifestFile, error) {
	prefix := fmt.Sprintf("example-%02d", index)

	trimmed, err := marshalIndented(a.TrimmedBundle)
	if err != nil {
		return nil, err
	}

	outputs := []struct {
		name string
		data []byte
	}{
		{prefix + "-a-fhirBundle.json", trimmed},
		{prefix + "-b-jws-payload-expanded.json", a.PayloadExpanded},
		{prefix + "-c-jws-payload-minified.json", a.PayloadMinified},
		{prefix + "-d-jws.txt", []byte(a.Token)},
		{prefix + "-e-file.smart-health-card", a.CardFile},
	}
	for i, code := range a.Codes {
		outputs = append(outputs,
			struct {
				name string
				data []byte
			}{fmt.Sprintf("%s-f-qr-code-numeric-value-%d.txt", prefix, i), []byte(code.Numeric)},
			struct {
				name string
				data []byte
			}{fmt.Sprintf("%s-g-qr-code-%d.svg", prefix, i), code.SVG},
		)
	}

	files := make([]manifestFile, 0, len(outputs))
	for _, out := range outputs {
		if err := file.WriteBytes(filepath.Join(dir, out.name), out.data); err != nil {
			return nil, err
		}
		files = append(files, manifestFile{
			Name:   out.name,
			Digest: digest.FromBytes(out.data).String(),
		})
	}
	return files, nil
}

func marshalIndented(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
