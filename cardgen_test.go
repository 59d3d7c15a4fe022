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

package cardgen

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/smarthealthcards/cardgen-go/faults"
	"github.com/smarthealthcards/cardgen-go/fhir"
	"github.com/smarthealthcards/cardgen-go/jws"
)

func loadKeys(t *testing.T) *jws.KeySet {
	t.Helper()
	keys, err := jws.LoadKeySet("jws/testdata/keys.json")
	if err != nil {
		t.Fatalf("LoadKeySet() error = %v", err)
	}
	return keys
}

func loadBundle(t *testing.T) fhir.Bundle {
	t.Helper()
	data, err := os.ReadFile("testdata/bundle.json")
	if err != nil {
		t.Fatal(err)
	}
	bundle, err := fhir.ParseBundle(data)
	if err != nil {
		t.Fatalf("ParseBundle() error = %v", err)
	}
	return bundle
}

func newGenerator(t *testing.T, c faults.Case) *Generator {
	t.Helper()
	gen, err := New(loadKeys(t), Options{Case: c})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return gen
}

func TestGenerate(t *testing.T) {
	gen := newGenerator(t, faults.None)
	a, err := gen.Generate(context.Background(), loadBundle(t))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if parts := strings.Split(a.Token, "."); len(parts) != 3 {
		t.Errorf("token has %d parts, want 3", len(parts))
	}
	if len(a.Codes) != 1 {
		t.Fatalf("len(Codes) = %d, want 1 for a small bundle", len(a.Codes))
	}
	if !strings.HasPrefix(a.Codes[0].Numeric, "shc:/") {
		t.Errorf("numeric string %q missing header", a.Codes[0].Numeric[:10])
	}
	if !strings.HasPrefix(string(a.Codes[0].SVG), "<svg") {
		t.Error("image is not vector markup")
	}

	var file map[string][]string
	if err := json.Unmarshal(a.CardFile, &file); err != nil {
		t.Fatalf("card file is not JSON: %v", err)
	}
	if vc := file["verifiableCredential"]; len(vc) != 1 || vc[0] != a.Token {
		t.Error("card file does not wrap the token")
	}

	var expanded, minified interface{}
	if err := json.Unmarshal(a.PayloadExpanded, &expanded); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(a.PayloadMinified, &minified); err != nil {
		t.Fatal(err)
	}
	if len(a.PayloadMinified) >= len(a.PayloadExpanded) {
		t.Error("minified payload is not smaller than expanded payload")
	}

	entries := a.TrimmedBundle["entry"].([]interface{})
	if len(entries) != 3 {
		t.Fatalf("trimmed bundle has %d entries, want 3", len(entries))
	}
	if got := entries[0].(map[string]interface{})["fullUrl"]; got != "resource:0" {
		t.Errorf("first entry fullUrl = %v, want resource:0", got)
	}
}

func TestGenerateDoesNotMutateInput(t *testing.T) {
	gen := newGenerator(t, faults.None)
	bundle := loadBundle(t)
	before, err := json.Marshal(bundle)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gen.Generate(context.Background(), bundle); err != nil {
		t.Fatal(err)
	}
	after, err := json.Marshal(bundle)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("Generate() mutated the input bundle")
	}
}

func TestGenerateFlattenedSkipsCodes(t *testing.T) {
	gen := newGenerator(t, faults.FlattenedJWS)
	a, err := gen.Generate(context.Background(), loadBundle(t))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasPrefix(a.Token, "{") {
		t.Errorf("token is not flattened JSON: %.20s", a.Token)
	}
	if len(a.Codes) != 0 {
		t.Errorf("len(Codes) = %d, want 0 for the flattened case", len(a.Codes))
	}
}

func TestGenerateTrailingWhitespace(t *testing.T) {
	gen := newGenerator(t, faults.TrailingWhitespace)
	a, err := gen.Generate(context.Background(), loadBundle(t))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasSuffix(a.Token, " \n") {
		t.Errorf("padded token %q has no trailing whitespace", a.Token[len(a.Token)-4:])
	}
	if !strings.Contains(string(a.CardFile), ` \n"`) {
		t.Error("card file does not carry the padded token")
	}
	// The scannable codes are built from the unpadded token.
	trimmed := strings.TrimRight(a.Token, " \n")
	if got := len(a.Codes[0].Numeric) - len("shc:/"); got != 2*len(trimmed) {
		t.Errorf("digit pair count = %d, want %d", got, 2*len(trimmed))
	}
}

func TestGenerateEveryCaseProducesOutput(t *testing.T) {
	bundle := loadBundle(t)
	for _, c := range faults.Cases() {
		c := c
		t.Run(string(c), func(t *testing.T) {
			gen := newGenerator(t, c)
			a, err := gen.Generate(context.Background(), bundle)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if a.Token == "" {
				t.Error("no token produced")
			}
			if c != faults.FlattenedJWS && len(a.Codes) == 0 {
				t.Error("no scannable codes produced")
			}
		})
	}
}

func TestGenerateAll(t *testing.T) {
	gen := newGenerator(t, faults.None)
	bundles := []fhir.Bundle{loadBundle(t), loadBundle(t)}
	results, err := gen.GenerateAll(context.Background(), bundles)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for i, a := range results {
		if a == nil {
			t.Errorf("result %d is nil", i)
		}
	}
}

func TestGenerateAllIsolatesFailures(t *testing.T) {
	gen := newGenerator(t, faults.None)
	bad := fhir.Bundle{
		"resourceType": "Bundle",
		"entry":        []interface{}{"not-an-object"},
	}
	results, err := gen.GenerateAll(context.Background(), []fhir.Bundle{loadBundle(t), bad, loadBundle(t)})
	if err == nil {
		t.Fatal("GenerateAll() expected joined error for the bad bundle")
	}
	var fetch *SourceFetchError
	if !errors.As(err, &fetch) {
		t.Errorf("joined error %v does not contain a SourceFetchError", err)
	}
	if results[0] == nil || results[2] == nil {
		t.Error("healthy bundles were disturbed by the failing one")
	}
	if results[1] != nil {
		t.Error("failed bundle still produced artifacts")
	}
}

func TestNewRejectsMissingKeys(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Error("New(nil) expected error")
	}

	// A single-key set cannot serve the wrong-kty case (index 4).
	small, err := jws.ParseKeySet([]byte(`{"keys": [` + firstKey(t) + `]}`))
	if err != nil {
		t.Fatalf("ParseKeySet() error = %v", err)
	}
	if _, err := New(small, Options{Case: faults.WrongKTYKey}); err == nil {
		t.Error("New() expected error for key index past the set")
	}
	var km *KeyMaterialError
	_, err = New(small, Options{Case: faults.WrongKTYKey})
	if !errors.As(err, &km) {
		t.Errorf("error %v is not a KeyMaterialError", err)
	}
}

// firstKey extracts the first key object from the shared test set.
func firstKey(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("jws/testdata/keys.json")
	if err != nil {
		t.Fatal(err)
	}
	var set struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(data, &set); err != nil {
		t.Fatal(err)
	}
	return string(set.Keys[0])
}

func TestGenerateIssuerOverride(t *testing.T) {
	gen, err := New(loadKeys(t), Options{Issuer: "https://issuer.example.org"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	a, err := gen.Generate(context.Background(), loadBundle(t))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(string(a.PayloadMinified), `"iss":"https://issuer.example.org"`) {
		t.Error("issuer override not reflected in the payload")
	}
}
