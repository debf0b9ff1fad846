package wire

import "errors"

// Sentinel errors. Compare with errors.Is; the codec wraps these with
// github.com/pkg/errors to attach stack context and the offending size.
var (
	// ErrFrameTooLarge is returned when a frame's total payload exceeds
	// MaxPayload, either as declared in an incoming header or as built by
	// an Encode call. It is connection-fatal on the decode side.
	ErrFrameTooLarge = errors.New("wire: frame payload exceeds maximum size")

	// ErrFieldTooLarge is returned by an Encode call when one of its
	// string/byte fields exceeds its documented maximum length. Encoding
	// fails before anything is written to the stream.
	ErrFieldTooLarge = errors.New("wire: field exceeds its maximum length")
)
