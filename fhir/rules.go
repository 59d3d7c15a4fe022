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

// pruneRule drops fields from an object reached by the trimming
// traversal when its condition holds. The whole rule set lives in this
// table so the minimization profile can be audited in one place.
type pruneRule struct {
	desc string
	when func(obj map[string]interface{}, depth int) bool
	drop []string
}

var pruneRules = []pruneRule{
	{
		desc: "resource envelope fields",
		when: func(obj map[string]interface{}, depth int) bool {
			return depth == 1
		},
		drop: []string{"id", "meta", "text"},
	},
	{
		desc: "patient PII",
		when: func(obj map[string]interface{}, depth int) bool {
			rt, _ := obj["resourceType"].(string)
			return rt == "Patient"
		},
		drop: []string{"telecom", "communication", "address", "contact"},
	},
	{
		desc: "display text shadowed by codings",
		when: func(obj map[string]interface{}, depth int) bool {
			_, ok := obj["coding"]
			return ok
		},
		drop: []string{"text"},
	},
	{
		desc: "display shadowed by system and code",
		when: func(obj map[string]interface{}, depth int) bool {
			_, hasSystem := obj["system"]
			_, hasCode := obj["code"]
			return hasSystem && hasCode
		},
		drop: []string{"display"},
	},
}

// systemRewrites maps known-bad terminology system URLs in upstream
// sample data to their canonical form.
var systemRewrites = map[string]string{
	"https://hl7.org/fhir/sid/cvx": "http://hl7.org/fhir/sid/cvx",
}
