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

// Package credential assembles the claims object wrapped by a signed
// health-card token.
package credential

import (
	"time"

	"github.com/smarthealthcards/cardgen-go/faults"
	"github.com/smarthealthcards/cardgen-go/fhir"
)

// FHIRVersion is the FHIR release the credential subject declares.
const FHIRVersion = "4.0.1"

// TypeVerifiableCredential is the fixed first element of vc.type.
const TypeVerifiableCredential = "VerifiableCredential"

// Claims is the signed claims object.
type Claims struct {
	Issuer    string               `json:"iss"`
	NotBefore float64              `json:"nbf"`
	VC        VerifiableCredential `json:"vc"`
}

// VerifiableCredential is the vc claim envelope.
type VerifiableCredential struct {
	Type              []string `json:"type"`
	CredentialSubject Subject  `json:"credentialSubject"`
}

// Subject wraps the trimmed bundle together with its FHIR version.
type Subject struct {
	FHIRVersion string      `json:"fhirVersion"`
	FHIRBundle  fhir.Bundle `json:"fhirBundle"`
}

// Build assembles the claims object around a trimmed bundle. The
// issuer, health-card type URI and issuance-time divisor come from the
// resolved pipeline parameters; tags contribute the bundle-derived
// type URIs. The trimmed bundle is carried verbatim.
func Build(trimmed fhir.Bundle, tags []string, params faults.Params, now time.Time) Claims {
	types := make([]string, 0, 2+len(tags))
	types = append(types, TypeVerifiableCredential, params.HealthCardType)
	types = append(types, tags...)

	return Claims{
		Issuer:    params.Issuer,
		NotBefore: float64(now.UnixMilli()) / params.NBFDivisor,
		VC: VerifiableCredential{
			Type: types,
			CredentialSubject: Subject{
				FHIRVersion: FHIRVersion,
				FHIRBundle:  trimmed,
			},
		},
	}
}
