package stego

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrNotFound indicates no valid container was found in the carrier.
	// Wrong-password extraction reports this same error so callers cannot
	// distinguish the two cases.
	ErrNotFound = errors.New("no hidden data found")

	// ErrMagicMismatch indicates bytes at a candidate offset did not
	// carry the expected container magic.
	ErrMagicMismatch = errors.New("container magic mismatch")

	// ErrTruncatedBits indicates a bit sequence whose length is not a
	// multiple of 8.
	ErrTruncatedBits = errors.New("bit sequence truncated")

	// ErrTruncatedMetadata indicates the metadata block exceeds the
	// remaining buffer.
	ErrTruncatedMetadata = errors.New("container metadata truncated")

	// ErrTruncatedBody indicates the body is shorter than the stored
	// size recorded in the metadata.
	ErrTruncatedBody = errors.New("container body truncated")

	// ErrAuthenticationFailed indicates an AEAD tag mismatch: wrong
	// password or tampered ciphertext. No plaintext is ever returned
	// alongside this error.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrCapacityExceeded indicates the payload does not fit the
	// carrier at the highest bits-per-unit setting.
	ErrCapacityExceeded = errors.New("carrier capacity exceeded")

	// ErrUnsupportedCarrier indicates the router has no codec for the
	// carrier kind.
	ErrUnsupportedCarrier = errors.New("unsupported carrier")

	// ErrChecksumMismatch indicates the recovered payload digest does
	// not match the embedded checksum. Returned only in strict mode;
	// lenient mode surfaces the mismatch as an integrity warning on
	// the payload instead.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrPasswordRequired indicates a SecretBox was constructed with an
	// empty password.
	ErrPasswordRequired = errors.New("password required")
)

// CapacityError reports how far a payload overshot the carrier.
// It wraps ErrCapacityExceeded.
type CapacityError struct {
	NeededBits    uint64 // physical bits the payload requires
	AvailableBits uint64 // physical bits the carrier offers
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("carrier capacity exceeded: need %s, have %s",
		formatBits(e.NeededBits), formatBits(e.AvailableBits))
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// ExtractError wraps a sentinel error with context about which stage
// of extraction failed.
type ExtractError struct {
	Err   error       // underlying sentinel (ErrNotFound, ErrTruncatedBody, ...)
	Kind  CarrierKind // carrier kind being extracted from
	Stage string      // stage that failed (locate, metadata, body, decrypt, checksum)
	Cause error       // original error, if any
}

func (e *ExtractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract %s (%s): %v", e.Kind, e.Stage, e.Cause)
	}
	return fmt.Sprintf("extract %s (%s): %v", e.Kind, e.Stage, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// newExtractError creates an ExtractError for an extraction stage failure.
func newExtractError(sentinel error, kind CarrierKind, stage string, cause error) error {
	return &ExtractError{
		Err:   sentinel,
		Kind:  kind,
		Stage: stage,
		Cause: cause,
	}
}

// formatBits renders a bit count with a byte-oriented human-readable
// suffix for capacity errors.
func formatBits(bits uint64) string {
	bytes := bits / 8
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d bits (%d B)", bits, bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%d bits (%.1f KB)", bits, float64(bytes)/1024)
	case bytes < 1024*1024*1024:
		return fmt.Sprintf("%d bits (%.1f MB)", bits, float64(bytes)/(1024*1024))
	default:
		return fmt.Sprintf("%d bits (%.1f GB)", bits, float64(bytes)/(1024*1024*1024))
	}
}
