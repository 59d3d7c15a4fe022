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

// KeyMaterialError is used when the signing key set is missing,
// unparseable, or the selected index is out of range. No valid output
// is possible, so it aborts the whole run.
type KeyMaterialError struct {
	Msg string
}

func (e KeyMaterialError) Error() string {
	if e.Msg != "" {
		return "signing key material unusable: " + e.Msg
	}
	return "signing key material unusable"
}

// SerializationError is used when a bundle's payload cannot be turned
// into the token's intermediate string form. It aborts that bundle's
// pipeline only.
type SerializationError struct {
	Msg string
}

func (e SerializationError) Error() string {
	if e.Msg != "" {
		return "failed to serialize credential payload: " + e.Msg
	}
	return "failed to serialize credential payload"
}

// SourceFetchError is used when a source bundle is unreachable or
// malformed. It aborts that bundle's pipeline only.
type SourceFetchError struct {
	Msg string
}

func (e SourceFetchError) Error() string {
	if e.Msg != "" {
		return "failed to fetch source bundle: " + e.Msg
	}
	return "failed to fetch source bundle"
}
