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

package qr

import (
	"fmt"
	"strings"

	"github.com/smarthealthcards/cardgen-go/faults"
)

// Code is one chunk's scannable-code output: the flat numeric string
// and the rendered vector image.
type Code struct {
	// Numeric is the header literal, the index/total suffix for
	// multi-chunk tokens, and the digit pairs.
	Numeric string

	// SVG is the vector markup of the QR code.
	SVG []byte
}

// Encode maps each token chunk to its numeric string and QR image.
// Chunk order is preserved in the output.
func Encode(chunks []string, params faults.Params) ([]Code, error) {
	codes := make([]Code, 0, len(chunks))
	for i, chunk := range chunks {
		header := headerValue(i, len(chunks), params.QRHeader)
		numeric, err := numericEncode(chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		svg, err := renderSVG(header, numeric, params.NumericSegmentMode)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		codes = append(codes, Code{Numeric: header + numeric, SVG: svg})
	}
	return codes, nil
}

// headerValue builds the byte-mode header segment. Single-chunk tokens
// carry no index/total suffix.
func headerValue(index, total int, literal string) string {
	if total <= 1 {
		return literal
	}
	return fmt.Sprintf("%s%d/%d/", literal, index+1, total)
}

// numericEncode maps every token character to two decimal digits. The
// token alphabet's lowest code point is '-', so c-'-' fixes each
// symbol to a two-digit slot; the JWS alphabet tops out at 'z' (77).
func numericEncode(chunk string) (string, error) {
	var b strings.Builder
	b.Grow(2 * len(chunk))
	for i := 0; i < len(chunk); i++ {
		v := int(chunk[i]) - '-'
		if v < 0 || v > 99 {
			return "", fmt.Errorf("character %q is outside the token alphabet", chunk[i])
		}
		b.WriteByte('0' + byte(v/10))
		b.WriteByte('0' + byte(v%10))
	}
	return b.String(), nil
}
