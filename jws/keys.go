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

package jws

import (
	"crypto"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	jose "gopkg.in/square/go-jose.v2"
)

// KeySet is a keyed set of signing keys loaded from a JWK-set
// document. It is read-only after loading and safe for concurrent use.
// Entries past the first exist to sign deliberately defective fixtures
// (wrong key, wrong curve, wrong key ID, wrong key type).
type KeySet struct {
	keys []jose.JSONWebKey
}

// LoadKeySet reads a JWK-set document from a file.
func LoadKeySet(path string) (*KeySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key set: %w", err)
	}
	return ParseKeySet(data)
}

// ParseKeySet parses a JWK-set document.
func ParseKeySet(data []byte) (*KeySet, error) {
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse key set: %w", err)
	}
	if len(set.Keys) == 0 {
		return nil, fmt.Errorf("key set contains no keys")
	}
	for i, k := range set.Keys {
		if k.IsPublic() {
			return nil, fmt.Errorf("key %d is not a private key", i)
		}
	}
	return &KeySet{keys: set.Keys}, nil
}

// Len returns the number of keys in the set.
func (s *KeySet) Len() int {
	return len(s.keys)
}

// Key selects a signing key by index.
func (s *KeySet) Key(index int) (*jose.JSONWebKey, error) {
	if index < 0 || index >= len(s.keys) {
		return nil, fmt.Errorf("key index %d out of range (set has %d keys)", index, len(s.keys))
	}
	return &s.keys[index], nil
}

// KeyID returns the key's declared ID, falling back to its RFC 7638
// SHA-256 thumbprint.
func KeyID(key *jose.JSONWebKey) (string, error) {
	if key.KeyID != "" {
		return key.KeyID, nil
	}
	thumb, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("compute key thumbprint: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(thumb), nil
}
