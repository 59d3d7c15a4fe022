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

// Package faults enumerates the deliberate mis-constructions used to
// produce negative fixtures for health-card verifiers. Exactly one
// deviation is active per generator invocation; the zero Case selects
// the correct pipeline. Every pipeline stage consumes the same Params
// value produced by Resolve, so the deviation is decided in one place.
package faults

import (
	"fmt"
	"strings"
)

// Case names a single deliberate deviation from the correct
// construction. Cases are mutually exclusive.
type Case string

const (
	// None selects the correct pipeline.
	None Case = ""

	// IssuerHTTP downgrades the issuer URL to the http scheme.
	IssuerHTTP Case = "issuer_http"

	// IssuerTrailingSlash appends a trailing slash to the issuer URL.
	IssuerTrailingSlash Case = "issuer_trailing_slash"

	// IssuerBadSuffix points the issuer URL at the key-set document
	// instead of the issuer root.
	IssuerBadSuffix Case = "issuer_bad_suffix"

	// NBFMilliseconds emits the issuance time in milliseconds instead
	// of seconds.
	NBFMilliseconds Case = "nbf_milliseconds"

	// WrongVCType replaces the health-card credential type URI with a
	// real but wrong value.
	WrongVCType Case = "wrong_vc_type"

	// NoDeflate skips payload compression and omits the zip header.
	NoDeflate Case = "no_deflate"

	// ZlibDeflate wraps the payload in a zlib container while still
	// declaring raw deflate in the protected header.
	ZlibDeflate Case = "zlib_deflate"

	// FlattenedJWS serializes the token as RFC 7515 flattened JSON
	// instead of the compact form.
	FlattenedJWS Case = "flattened_jws"

	// WrongKey signs with a valid key that is not the issuer's
	// published key.
	WrongKey Case = "wrong_key"

	// WrongCurveKey signs with a P-384 key while declaring ES256.
	WrongCurveKey Case = "wrong_curve_key"

	// WrongKIDKey signs with a key whose key ID is not its RFC 7638
	// thumbprint.
	WrongKIDKey Case = "wrong_kid_key"

	// WrongKTYKey signs with an RSA key while declaring ES256.
	WrongKTYKey Case = "wrong_kty_key"

	// OversizedChunk inflates the chunk capacity past the real
	// scanning limit.
	OversizedChunk Case = "oversized_chunk"

	// QRHeaderNoSlash drops the trailing path character from the
	// scannable-code header literal.
	QRHeaderNoSlash Case = "qr_header_no_slash"

	// WrongQRMode declares the numeric segment as byte mode.
	WrongQRMode Case = "wrong_qr_mode"

	// TrailingWhitespace pads emitted token artifacts with trailing
	// whitespace.
	TrailingWhitespace Case = "trailing_whitespace"
)

// Compression selects how the claims payload is packed into the token.
type Compression int

const (
	// CompressionRaw is raw deflate with no container, declared as
	// zip "DEF". This is the correct construction.
	CompressionRaw Compression = iota

	// CompressionNone leaves the payload uncompressed and omits the
	// zip header field.
	CompressionNone

	// CompressionZlib wraps the payload in a zlib container while the
	// header still declares raw deflate. The declared algorithm cannot
	// decompress the payload.
	CompressionZlib
)

// Serialization selects the signed-token serialization.
type Serialization int

const (
	// SerializationCompact is the three-part dot-separated form.
	SerializationCompact Serialization = iota

	// SerializationFlattened is the RFC 7515 flattened JSON form,
	// which the numeric encoding cannot represent.
	SerializationFlattened
)

// SegmentMode declares how a scannable-code segment is encoded.
type SegmentMode int

const (
	// SegmentNumeric is QR numeric mode.
	SegmentNumeric SegmentMode = iota

	// SegmentByte is QR byte mode.
	SegmentByte
)

// Correct values and capacity defaults. The chunk limits are the
// numeric-mode capacities of a version 22 QR code at error-correction
// level L, less the byte-mode header segment.
const (
	DefaultIssuer    = "https://spec.smarthealth.cards/examples/issuer"
	HealthCardType   = "https://smarthealth.cards#health-card"
	QRHeader         = "shc:/"
	SingleChunkLimit = 1195
	ChunkLimit       = 1191
)

// Inflated capacities for the oversized-chunk case: the version 40/L
// numeric ceiling, so the token still encodes into some QR code but
// exceeds the scanning budget the format targets.
const (
	oversizedSingleLimit = 2839
	oversizedChunkLimit  = 2835
)

const wrongVCType = "https://smarthealth.cards#covid19"

// Params is the full parameter set consumed by the pipeline stages.
// The zero-deviation value is produced by Resolve(None).
type Params struct {
	// Case is the deviation these parameters encode.
	Case Case

	// Issuer is the iss claim value.
	Issuer string

	// NBFDivisor divides the current epoch milliseconds to produce
	// the nbf claim. 1000 yields seconds, 1 yields milliseconds.
	NBFDivisor float64

	// HealthCardType is the health-card type URI in vc.type.
	HealthCardType string

	// Compression selects payload packing.
	Compression Compression

	// Serialization selects the token serialization.
	Serialization Serialization

	// KeyIndex selects the signing key from the keyed set.
	KeyIndex int

	// SingleChunkLimit is the largest token emitted as one chunk.
	SingleChunkLimit int

	// ChunkLimit is the per-chunk capacity for split tokens.
	ChunkLimit int

	// QRHeader is the byte-mode header segment literal.
	QRHeader string

	// NumericSegmentMode declares the mode of the numeric segment.
	NumericSegmentMode SegmentMode

	// PadArtifacts appends trailing whitespace to emitted token
	// artifacts.
	PadArtifacts bool
}

// Cases returns every known case including None, in a stable order
// suitable for CLI listings.
func Cases() []Case {
	return []Case{
		None,
		IssuerHTTP,
		IssuerTrailingSlash,
		IssuerBadSuffix,
		NBFMilliseconds,
		WrongVCType,
		NoDeflate,
		ZlibDeflate,
		FlattenedJWS,
		WrongKey,
		WrongCurveKey,
		WrongKIDKey,
		WrongKTYKey,
		OversizedChunk,
		QRHeaderNoSlash,
		WrongQRMode,
		TrailingWhitespace,
	}
}

// Resolve produces the pipeline parameters for a case, starting from
// the default issuer URL.
func Resolve(c Case) (Params, error) {
	return ResolveIssuer(c, DefaultIssuer)
}

// ResolveIssuer produces the pipeline parameters for a case with the
// given base issuer URL. Issuer-shape cases transform the base, so a
// caller-supplied issuer still yields the intended defect.
func ResolveIssuer(c Case, issuer string) (Params, error) {
	p := Params{
		Case:               c,
		Issuer:             issuer,
		NBFDivisor:         1000,
		HealthCardType:     HealthCardType,
		Compression:        CompressionRaw,
		Serialization:      SerializationCompact,
		KeyIndex:           0,
		SingleChunkLimit:   SingleChunkLimit,
		ChunkLimit:         ChunkLimit,
		QRHeader:           QRHeader,
		NumericSegmentMode: SegmentNumeric,
	}
	switch c {
	case None:
	case IssuerHTTP:
		p.Issuer = "http://" + strings.TrimPrefix(issuer, "https://")
	case IssuerTrailingSlash:
		p.Issuer = issuer + "/"
	case IssuerBadSuffix:
		p.Issuer = issuer + "/.well-known/jwks.json"
	case NBFMilliseconds:
		p.NBFDivisor = 1
	case WrongVCType:
		p.HealthCardType = wrongVCType
	case NoDeflate:
		p.Compression = CompressionNone
	case ZlibDeflate:
		p.Compression = CompressionZlib
	case FlattenedJWS:
		p.Serialization = SerializationFlattened
	case WrongKey:
		p.KeyIndex = 1
	case WrongCurveKey:
		p.KeyIndex = 2
	case WrongKIDKey:
		p.KeyIndex = 3
	case WrongKTYKey:
		p.KeyIndex = 4
	case OversizedChunk:
		p.SingleChunkLimit = oversizedSingleLimit
		p.ChunkLimit = oversizedChunkLimit
	case QRHeaderNoSlash:
		p.QRHeader = strings.TrimSuffix(QRHeader, "/")
	case WrongQRMode:
		p.NumericSegmentMode = SegmentByte
	case TrailingWhitespace:
		p.PadArtifacts = true
	default:
		return Params{}, fmt.Errorf("unknown fault case %q", c)
	}
	return p, nil
}
