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
	"strings"
	"testing"

	"rsc.io/qr/coding"

	"github.com/smarthealthcards/cardgen-go/faults"
)

// tokenAlphabet is every character a compact signed token can contain:
// base64url plus the segment separator.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_."

func TestNumericMapping(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-", "00"},
		{".", "01"},
		{"0", "03"},
		{"9", "12"},
		{"A", "20"},
		{"Z", "45"},
		{"_", "50"},
		{"a", "52"},
		{"z", "77"},
		{"eyJ", "567629"},
	}
	for _, tt := range tests {
		got, err := numericEncode(tt.in)
		if err != nil {
			t.Fatalf("numericEncode(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("numericEncode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Every alphabet symbol must land in a two-digit slot; the encoding
// doubles the length exactly.
func TestNumericAlphabet(t *testing.T) {
	got, err := numericEncode(tokenAlphabet)
	if err != nil {
		t.Fatalf("numericEncode() error = %v", err)
	}
	if len(got) != 2*len(tokenAlphabet) {
		t.Fatalf("len = %d, want %d", len(got), 2*len(tokenAlphabet))
	}
	for i := 0; i < len(tokenAlphabet); i++ {
		v := int(tokenAlphabet[i]) - '-'
		if v < 0 || v > 99 {
			t.Errorf("alphabet symbol %q maps to %d, outside two digits", tokenAlphabet[i], v)
		}
	}
}

func TestNumericRejectsForeignCharacters(t *testing.T) {
	for _, s := range []string{`"`, "{", " ", "\n"} {
		if _, err := numericEncode(s); err == nil {
			t.Errorf("numericEncode(%q) expected error", s)
		}
	}
}

func TestHeaderValue(t *testing.T) {
	tests := []struct {
		index, total int
		want         string
	}{
		{0, 1, "shc:/"},
		{0, 2, "shc:/1/2/"},
		{1, 2, "shc:/2/2/"},
		{2, 3, "shc:/3/3/"},
	}
	for _, tt := range tests {
		if got := headerValue(tt.index, tt.total, faults.QRHeader); got != tt.want {
			t.Errorf("headerValue(%d, %d) = %q, want %q", tt.index, tt.total, got, tt.want)
		}
	}
}

func TestEncodeSingleChunk(t *testing.T) {
	params, err := faults.Resolve(faults.None)
	if err != nil {
		t.Fatal(err)
	}
	codes, err := Encode([]string{"eyJhbGciOiJFUzI1NiJ9.e30.c2ln"}, params)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(codes) != 1 {
		t.Fatalf("len(codes) = %d, want 1", len(codes))
	}
	if !strings.HasPrefix(codes[0].Numeric, "shc:/") {
		t.Errorf("numeric string %q missing header", codes[0].Numeric)
	}
	if strings.Contains(codes[0].Numeric, "1/1/") {
		t.Error("single chunk must not carry an index/total suffix")
	}
	if want := 2 * len("eyJhbGciOiJFUzI1NiJ9.e30.c2ln"); len(codes[0].Numeric) != len("shc:/")+want {
		t.Errorf("digit pair count = %d, want %d", len(codes[0].Numeric)-len("shc:/"), want)
	}
}

func TestEncodeMultiChunkHeaders(t *testing.T) {
	params, err := faults.Resolve(faults.None)
	if err != nil {
		t.Fatal(err)
	}
	codes, err := Encode([]string{"abc", "def"}, params)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("len(codes) = %d, want 2", len(codes))
	}
	if !strings.HasPrefix(codes[0].Numeric, "shc:/1/2/") {
		t.Errorf("chunk 1 numeric = %q, want shc:/1/2/ prefix", codes[0].Numeric)
	}
	if !strings.HasPrefix(codes[1].Numeric, "shc:/2/2/") {
		t.Errorf("chunk 2 numeric = %q, want shc:/2/2/ prefix", codes[1].Numeric)
	}
}

func TestSegmentsModes(t *testing.T) {
	segs := segments("shc:/", "1234", faults.SegmentNumeric)
	if len(segs) != 2 {
		t.Fatalf("len(segs) = %d, want 2", len(segs))
	}
	if _, ok := segs[0].(coding.String); !ok {
		t.Errorf("header segment is %T, want byte mode", segs[0])
	}
	if _, ok := segs[1].(coding.Num); !ok {
		t.Errorf("numeric segment is %T, want numeric mode", segs[1])
	}

	// The wrong-mode fixture declares the digits as byte mode.
	segs = segments("shc:/", "1234", faults.SegmentByte)
	if _, ok := segs[1].(coding.String); !ok {
		t.Errorf("numeric segment is %T, want byte mode under the wrong-mode fixture", segs[1])
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := renderSVG("shc:/", "56762959532654603460292437404460",
		faults.SegmentNumeric)
	if err != nil {
		t.Fatalf("renderSVG() error = %v", err)
	}
	s := string(svg)
	if !strings.HasPrefix(s, "<svg xmlns=") {
		t.Errorf("markup does not open an svg element: %.40s", s)
	}
	if !strings.Contains(s, "<path fill=\"#000000\"") {
		t.Error("markup has no module path")
	}
	if !strings.Contains(s, "h1v1h-1z") {
		t.Error("markup path paints no modules")
	}
}

func TestEncodeLargeChunkPicksBiggerVersion(t *testing.T) {
	params, err := faults.Resolve(faults.None)
	if err != nil {
		t.Fatal(err)
	}
	small, err := Encode([]string{token(100)}, params)
	if err != nil {
		t.Fatalf("Encode(small) error = %v", err)
	}
	large, err := Encode([]string{token(1195)}, params)
	if err != nil {
		t.Fatalf("Encode(large) error = %v", err)
	}
	if len(large[0].SVG) <= len(small[0].SVG) {
		t.Error("larger payload did not produce a larger code")
	}
}
