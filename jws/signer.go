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

// Package jws serializes, compresses and signs health-card claims into
// compact signed tokens.
package jws

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	jose "gopkg.in/square/go-jose.v2"

	"github.com/smarthealthcards/cardgen-go/faults"
)

// alg is the algorithm every token declares. Keys that cannot actually
// produce an ES256 signature still sign with their own algorithm while
// the header keeps this value; the resulting defect is the point of
// the wrong-key fixtures.
const alg = "ES256"

// protectedHeader is the token's protected header. zip is declared
// whenever the payload claims to be compressed, including the
// zlib-wrapped fixture whose payload the declared algorithm cannot
// decompress.
type protectedHeader struct {
	Zip string `json:"zip,omitempty"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
}

// flattenedToken is the RFC 7515 flattened JSON serialization emitted
// under the flattened-serialization fixture.
type flattenedToken struct {
	Protected string `json:"protected"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// Sign serializes the claims, packs them per the resolved parameters,
// and signs them with the selected key. It fails only when the claims
// cannot be serialized or the key material is unusable; deliberately
// defective parameters still produce a token.
func Sign(claims interface{}, key *jose.JSONWebKey, params faults.Params) (string, error) {
	body, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("serialize claims: %w", err)
	}

	kid, err := KeyID(key)
	if err != nil {
		return "", err
	}
	header := protectedHeader{Alg: alg, Kid: kid}

	payload := body
	switch params.Compression {
	case faults.CompressionRaw:
		header.Zip = "DEF"
		payload, err = deflate(body)
	case faults.CompressionZlib:
		header.Zip = "DEF"
		payload, err = zlibCompress(body)
	case faults.CompressionNone:
	}
	if err != nil {
		return "", fmt.Errorf("compress payload: %w", err)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("serialize protected header: %w", err)
	}

	protected := base64.RawURLEncoding.EncodeToString(headerJSON)
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	signingInput := protected + "." + encoded

	method, err := signingMethod(key.Key)
	if err != nil {
		return "", err
	}
	signature, err := method.Sign(signingInput, key.Key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if params.Serialization == faults.SerializationFlattened {
		flat, err := json.Marshal(flattenedToken{
			Protected: protected,
			Payload:   encoded,
			Signature: signature,
		})
		if err != nil {
			return "", fmt.Errorf("serialize flattened token: %w", err)
		}
		return string(flat), nil
	}
	return signingInput + "." + signature, nil
}

// signingMethod picks the signing method matching the key's actual
// type and curve. A curve-matched ECDSA method is built for non-P-256
// keys so the wrong-curve fixture still signs; RSA and Ed25519 keys
// sign with their native methods while the header declares ES256.
func signingMethod(key interface{}) (jwt.SigningMethod, error) {
	switch k := key.(type) {
	case *ecdsa.PrivateKey:
		bits := k.Curve.Params().BitSize
		if bits == 256 {
			return jwt.SigningMethodES256, nil
		}
		return &jwt.SigningMethodECDSA{
			Name:      alg,
			Hash:      crypto.SHA256,
			KeySize:   (bits + 7) / 8,
			CurveBits: bits,
		}, nil
	case *rsa.PrivateKey:
		return jwt.SigningMethodPS256, nil
	case ed25519.PrivateKey:
		return jwt.SigningMethodEdDSA, nil
	}
	return nil, fmt.Errorf("unsupported key type %T", key)
}

// deflate compresses with raw deflate, no container. This is the form
// the zip header field declares.
func deflate(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// zlibCompress wraps the deflate stream in a zlib container.
func zlibCompress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
