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

package fhir

import (
	"context"
	"fmt"
	"strings"

	"github.com/smarthealthcards/cardgen-go/log"
)

// Trim minimizes a bundle to the health-card profile. The input is
// deep-copied and never mutated. Entry identifiers are rewritten to
// resource:<index> in entry order, intra-bundle references are
// rewritten to the same short form, and every resource is pruned per
// the rule table. Trimming is deterministic and idempotent.
func Trim(ctx context.Context, bundle Bundle) (Bundle, error) {
	logger := log.GetLogger(ctx)

	out := deepCopy(map[string]interface{}(bundle)).(map[string]interface{})
	delete(out, "id")
	delete(out, "meta")

	entries, err := Bundle(out).entries()
	if err != nil {
		return nil, err
	}

	refs := make(map[string]string, len(entries))
	for i, entry := range entries {
		fullURL, ok := entry["fullUrl"].(string)
		if !ok {
			return nil, fmt.Errorf("bundle entry %d has no fullUrl", i)
		}
		refs[shortKey(fullURL)] = shortRef(i)
	}

	t := &trimmer{refs: refs, logger: logger}
	for i, entry := range entries {
		entry["fullUrl"] = shortRef(i)
		if res, ok := entry["resource"].(map[string]interface{}); ok {
			t.walkObject(res, 1)
		}
	}
	return out, nil
}

func shortRef(i int) string {
	return fmt.Sprintf("resource:%d", i)
}

type trimmer struct {
	refs   map[string]string
	logger log.Logger
}

func (t *trimmer) walkObject(obj map[string]interface{}, depth int) {
	for _, rule := range pruneRules {
		if rule.when(obj, depth) {
			for _, field := range rule.drop {
				delete(obj, field)
			}
		}
	}
	if ref, ok := obj["reference"].(string); ok {
		obj["reference"] = t.resolve(ref)
	}
	if system, ok := obj["system"].(string); ok {
		if canonical, ok := systemRewrites[system]; ok {
			obj["system"] = canonical
		}
	}
	for _, v := range obj {
		t.walkValue(v, depth+1)
	}
}

func (t *trimmer) walkValue(v interface{}, depth int) {
	switch v := v.(type) {
	case map[string]interface{}:
		t.walkObject(v, depth)
	case []interface{}:
		for _, e := range v {
			t.walkValue(e, depth)
		}
	}
}

// resolve rewrites an intra-bundle reference to its short form. An
// unresolved reference that textually targets a Patient resource falls
// back to the first entry: upstream sample bundles are known to carry
// patient references that do not match any fullUrl.
func (t *trimmer) resolve(ref string) string {
	if short, ok := t.refs[shortKey(ref)]; ok {
		return short
	}
	if strings.Contains(ref, "Patient") {
		t.logger.Warnf("reference %q does not resolve; assuming the bundle's patient entry", ref)
		return shortRef(0)
	}
	return ref
}
