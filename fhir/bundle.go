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

// Package fhir models FHIR bundles as decoded JSON documents and trims
// them to the minimal profile carried inside a health-card credential.
package fhir

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Bundle is a FHIR bundle as decoded JSON: objects are
// map[string]interface{}, arrays are []interface{}, and leaves are
// string, float64, bool or nil.
type Bundle map[string]interface{}

// Resource is a single FHIR resource within a bundle entry.
type Resource = map[string]interface{}

// ParseBundle decodes a JSON document into a Bundle and checks that it
// is a FHIR bundle with an entry list.
func ParseBundle(data []byte) (Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if rt, _ := b["resourceType"].(string); rt != "Bundle" {
		return nil, fmt.Errorf("document is not a FHIR bundle (resourceType %q)", b["resourceType"])
	}
	if _, ok := b["entry"].([]interface{}); !ok {
		return nil, fmt.Errorf("bundle has no entry list")
	}
	return b, nil
}

// entries returns the bundle's entry objects in order. Every element
// of the entry list must be an object.
func (b Bundle) entries() ([]map[string]interface{}, error) {
	raw, _ := b["entry"].([]interface{})
	out := make([]map[string]interface{}, len(raw))
	for i, e := range raw {
		entry, ok := e.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("bundle entry %d is not an object", i)
		}
		out[i] = entry
	}
	return out, nil
}

// shortKey normalizes an entry identifier or reference to its last two
// path segments, e.g. "https://example.org/fhir/Patient/123" and
// "Patient/123" both normalize to "Patient/123". Identifiers without a
// path separator are returned unchanged, so already-short references
// map to themselves.
func shortKey(ref string) string {
	parts := strings.Split(ref, "/")
	if len(parts) < 2 {
		return ref
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

// deepCopy clones a decoded JSON value. Primitive leaves are immutable
// and shared.
func deepCopy(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, e := range v {
			m[k] = deepCopy(e)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(v))
		for i, e := range v {
			s[i] = deepCopy(e)
		}
		return s
	default:
		return v
	}
}
