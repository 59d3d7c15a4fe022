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

// Domain type tags contributed to vc.type based on bundle content.
const (
	TagImmunization = "https://smarthealth.cards#immunization"
	TagCOVID19      = "https://smarthealth.cards#covid19"
	TagLaboratory   = "https://smarthealth.cards#laboratory"
)

const cvxSystem = "http://hl7.org/fhir/sid/cvx"

// covidCVX is the set of CVX codes for COVID-19 vaccines.
var covidCVX = map[string]bool{
	"207": true, // Moderna
	"208": true, // Pfizer-BioNTech
	"210": true, // AstraZeneca
	"211": true, // Novavax
	"212": true, // Janssen
	"217": true, // Pfizer-BioNTech pediatric
	"218": true, // Pfizer-BioNTech pediatric dose 2
	"219": true, // Pfizer-BioNTech infant
}

// TypeTags inspects a bundle's resources and returns the domain type
// tags for the credential's type list, in a stable order. Immunization
// entries contribute the immunization tag, CVX-coded COVID vaccines
// additionally contribute the covid19 tag, and lab observations
// contribute the laboratory tag.
func TypeTags(bundle Bundle) []string {
	var immunization, covid, laboratory bool

	entries, err := bundle.entries()
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		res, ok := entry["resource"].(map[string]interface{})
		if !ok {
			continue
		}
		switch res["resourceType"] {
		case "Immunization":
			immunization = true
			if hasCovidCVX(res) {
				covid = true
			}
		case "Observation":
			laboratory = true
		}
	}

	var tags []string
	if immunization {
		tags = append(tags, TagImmunization)
	}
	if covid {
		tags = append(tags, TagCOVID19)
	}
	if laboratory {
		tags = append(tags, TagLaboratory)
	}
	return tags
}

func hasCovidCVX(res Resource) bool {
	vaccineCode, ok := res["vaccineCode"].(map[string]interface{})
	if !ok {
		return false
	}
	codings, ok := vaccineCode["coding"].([]interface{})
	if !ok {
		return false
	}
	for _, c := range codings {
		coding, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		code, _ := coding["code"].(string)
		if coding["system"] == cvxSystem && covidCVX[code] {
			return true
		}
	}
	return false
}
