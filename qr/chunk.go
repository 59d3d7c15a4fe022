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

// Package qr splits signed tokens into capacity-bounded chunks and
// encodes each chunk as a numeric-mode scannable code.
package qr

// Chunk splits a token into capacity-bounded contiguous substrings.
// A token at or below singleLimit is returned whole. Larger tokens are
// split into ceil(len/chunkLimit) chunks of near-equal size rather
// than maximal chunks followed by a small remainder. Concatenating the
// chunks in order reconstructs the token exactly.
func Chunk(token string, singleLimit, chunkLimit int) []string {
	if len(token) <= singleLimit {
		return []string{token}
	}
	count := (len(token) + chunkLimit - 1) / chunkLimit
	size := (len(token) + count - 1) / count
	chunks := make([]string, 0, count)
	for start := 0; start < len(token); start += size {
		end := start + size
		if end > len(token) {
			end = len(token)
		}
		chunks = append(chunks, token[start:end])
	}
	return chunks
}
