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
	"bytes"
	"errors"
	"fmt"

	"rsc.io/qr/coding"

	"github.com/smarthealthcards/cardgen-go/faults"
)

// quietZone is the border width around the code, in modules.
const quietZone = 4

// renderSVG encodes the header and numeric segments as declared and
// renders the QR code as vector markup at error-correction level L.
func renderSVG(header, numeric string, mode faults.SegmentMode) ([]byte, error) {
	code, err := plan(segments(header, numeric, mode))
	if err != nil {
		return nil, err
	}
	return svgBytes(code), nil
}

// segments builds the two-segment payload: the header is always byte
// mode; the numeric segment is numeric mode unless a fixture declares
// it byte mode.
func segments(header, numeric string, mode faults.SegmentMode) []coding.Encoding {
	segs := []coding.Encoding{coding.String(header)}
	if mode == faults.SegmentByte {
		return append(segs, coding.String(numeric))
	}
	return append(segs, coding.Num(numeric))
}

// plan encodes the segments at the smallest QR version that fits them
// at level L.
func plan(segs []coding.Encoding) (*coding.Code, error) {
	for v := coding.Version(coding.MinVersion); v <= coding.MaxVersion; v++ {
		bits := 0
		for _, s := range segs {
			if err := s.Check(); err != nil {
				return nil, err
			}
			bits += s.Bits(v)
		}
		if bits > v.DataBytes(coding.L)*8 {
			continue
		}
		p, err := coding.NewPlan(v, coding.L, 0)
		if err != nil {
			return nil, err
		}
		return p.Encode(segs...)
	}
	return nil, errors.New("payload too large for any QR version")
}

// svgBytes renders the code's module bitmap as a single path over a
// white background, with a quiet zone on all sides.
func svgBytes(code *coding.Code) []byte {
	size := code.Size + 2*quietZone
	var b bytes.Buffer
	fmt.Fprintf(&b, "<svg xmlns=%q viewBox=\"0 0 %d %d\" shape-rendering=\"crispEdges\">\n",
		"http://www.w3.org/2000/svg", size, size)
	b.WriteString("<rect width=\"100%\" height=\"100%\" fill=\"#ffffff\"/>\n")
	b.WriteString("<path fill=\"#000000\" d=\"")
	for y := 0; y < code.Size; y++ {
		for x := 0; x < code.Size; x++ {
			if code.Black(x, y) {
				fmt.Fprintf(&b, "M%d %dh1v1h-1z", x+quietZone, y+quietZone)
			}
		}
	}
	b.WriteString("\"/>\n</svg>\n")
	return b.Bytes()
}
