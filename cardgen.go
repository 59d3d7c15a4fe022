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

// Package cardgen turns clinical FHIR bundles into health-card
// credential fixtures: a trimmed bundle, a signed compact token, and
// per-chunk numeric strings with scannable QR images. A fault case can
// deliberately mis-construct exactly one stage to produce negative
// fixtures for verifier conformance testing.
package cardgen

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smarthealthcards/cardgen-go/credential"
	"github.com/smarthealthcards/cardgen-go/faults"
	"github.com/smarthealthcards/cardgen-go/fhir"
	"github.com/smarthealthcards/cardgen-go/jws"
	"github.com/smarthealthcards/cardgen-go/log"
	"github.com/smarthealthcards/cardgen-go/qr"
)

// Options configures a Generator.
type Options struct {
	// Case selects the fault-injection case. The zero value selects
	// the correct pipeline.
	Case faults.Case

	// Issuer overrides the default issuer URL. Issuer-shape fault
	// cases transform the override, so the intended defect survives.
	Issuer string

	// SingleChunkLimit and ChunkLimit override the default chunk
	// capacities. They are ignored when the fault case controls the
	// capacities itself.
	SingleChunkLimit int
	ChunkLimit       int
}

// Artifacts is the full output set for one bundle. Within one bundle
// the chunk order of Codes matches the chunk order of the token.
type Artifacts struct {
	// Case is the fault case the artifacts were generated under.
	Case faults.Case

	// TrimmedBundle is the minimized bundle carried by the credential.
	TrimmedBundle fhir.Bundle

	// PayloadExpanded and PayloadMinified are the claims document,
	// indented and compact.
	PayloadExpanded []byte
	PayloadMinified []byte

	// Token is the signed token as emitted, including any whitespace
	// padding applied by the padding fault case.
	Token string

	// CardFile is the wrapping credential-file document.
	CardFile []byte

	// Codes holds one numeric string and one SVG image per chunk.
	// It is empty for the flattened-serialization case, whose token
	// falls outside the numeric-encoding alphabet.
	Codes []qr.Code
}

// cardFile is the credential-file document wrapping the token.
type cardFile struct {
	VerifiableCredential []string `json:"verifiableCredential"`
}

// Generator runs the credential encoding pipeline. Key material is
// loaded once and reused read-only, so a Generator is safe for
// concurrent use.
type Generator struct {
	keys   *jws.KeySet
	params faults.Params
	now    func() time.Time
}

// New creates a Generator over a loaded key set.
func New(keys *jws.KeySet, opts Options) (*Generator, error) {
	if keys == nil {
		return nil, &KeyMaterialError{Msg: "no key set"}
	}

	issuer := opts.Issuer
	if issuer == "" {
		issuer = faults.DefaultIssuer
	}
	params, err := faults.ResolveIssuer(opts.Case, issuer)
	if err != nil {
		return nil, err
	}
	if opts.SingleChunkLimit > 0 && params.SingleChunkLimit == faults.SingleChunkLimit {
		params.SingleChunkLimit = opts.SingleChunkLimit
	}
	if opts.ChunkLimit > 0 && params.ChunkLimit == faults.ChunkLimit {
		params.ChunkLimit = opts.ChunkLimit
	}

	if params.KeyIndex >= keys.Len() {
		return nil, &KeyMaterialError{Msg: "key set is missing the entry for case " + string(opts.Case)}
	}
	return &Generator{keys: keys, params: params, now: time.Now}, nil
}

// Params returns the resolved pipeline parameters.
func (g *Generator) Params() faults.Params {
	return g.params
}

// Generate runs the pipeline for one bundle. The input bundle is never
// mutated.
func (g *Generator) Generate(ctx context.Context, bundle fhir.Bundle) (*Artifacts, error) {
	logger := log.GetLogger(ctx)

	trimmed, err := fhir.Trim(ctx, bundle)
	if err != nil {
		return nil, &SourceFetchError{Msg: err.Error()}
	}

	claims := credential.Build(trimmed, fhir.TypeTags(trimmed), g.params, g.now())

	key, err := g.keys.Key(g.params.KeyIndex)
	if err != nil {
		return nil, &KeyMaterialError{Msg: err.Error()}
	}
	token, err := jws.Sign(claims, key, g.params)
	if err != nil {
		return nil, &SerializationError{Msg: err.Error()}
	}
	logger.Debugf("signed token of %d bytes with key %d", len(token), g.params.KeyIndex)

	expanded, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		return nil, &SerializationError{Msg: err.Error()}
	}
	minified, err := json.Marshal(claims)
	if err != nil {
		return nil, &SerializationError{Msg: err.Error()}
	}

	var codes []qr.Code
	if g.params.Serialization == faults.SerializationCompact {
		chunks := qr.Chunk(token, g.params.SingleChunkLimit, g.params.ChunkLimit)
		codes, err = qr.Encode(chunks, g.params)
		if err != nil {
			return nil, &SerializationError{Msg: err.Error()}
		}
	} else {
		// The flattened token contains characters below the numeric
		// alphabet's floor; the fixture set for this case carries no
		// scannable codes.
		logger.Debug("flattened serialization: skipping scannable-code output")
	}

	out := token
	if g.params.PadArtifacts {
		out = pad(token)
	}
	file, err := json.Marshal(cardFile{VerifiableCredential: []string{out}})
	if err != nil {
		return nil, &SerializationError{Msg: err.Error()}
	}

	return &Artifacts{
		Case:            g.params.Case,
		TrimmedBundle:   trimmed,
		PayloadExpanded: expanded,
		PayloadMinified: minified,
		Token:           out,
		CardFile:        file,
		Codes:           codes,
	}, nil
}

// GenerateAll fans out one pipeline run per bundle and joins them. The
// result slice is positional: a bundle that fails leaves a nil slot and
// contributes to the joined error, without disturbing the other
// bundles.
func (g *Generator) GenerateAll(ctx context.Context, bundles []fhir.Bundle) ([]*Artifacts, error) {
	results := make([]*Artifacts, len(bundles))
	errs := make([]error, len(bundles))

	eg, ctx := errgroup.WithContext(ctx)
	for i := range bundles {
		i := i
		eg.Go(func() error {
			a, err := g.Generate(ctx, bundles[i])
			if err != nil {
				var fatal *KeyMaterialError
				if errors.As(err, &fatal) {
					return err
				}
				errs[i] = err
				return nil
			}
			results[i] = a
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, errors.Join(errs...)
}

// pad appends the trailing whitespace the padding fault case asks for.
func pad(s string) string {
	return s + " \n"
}
