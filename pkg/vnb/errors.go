package vnb

import "errors"

// Codec errors. Every failure returned by Encode or Decode wraps one of
// these sentinels, so callers can classify with errors.Is.
var (
	// ErrTruncated means the stream ended before a length implied by
	// already-read counts or flags was satisfied.
	ErrTruncated = errors.New("vnb: truncated input")

	// ErrLegacyParse means the legacy fallback parser ran out of bytes or
	// read an implausible count. The legacy attempt is the codec's one
	// retry; this failure is final.
	ErrLegacyParse = errors.New("vnb: legacy parse failed")

	// ErrInvariant is an encode-time failure: the required position stream
	// is missing, or a present stream's length disagrees with the vertex
	// or index count.
	ErrInvariant = errors.New("vnb: container invariant violated")

	// ErrStringTooLong means a UTF-8 payload exceeds the 16-bit length prefix.
	ErrStringTooLong = errors.New("vnb: string exceeds 65535 bytes")

	// ErrUnknownEnum means a topology, slot, ref-kind, alpha-mode, mime or
	// sampler byte is outside its defined range.
	ErrUnknownEnum = errors.New("vnb: unknown enum value")

	// ErrUnresolvedTexture is reported under ResolveErrorMissing when the
	// resolver cannot supply bytes for an external texture URI.
	ErrUnresolvedTexture = errors.New("vnb: unresolved external texture")
)

// errNotCurrentFormat signals a magic/version mismatch. It never escapes
// Decode: it routes the input to the legacy parser instead of failing.
var errNotCurrentFormat = errors.New("vnb: not current format")
