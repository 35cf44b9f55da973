package stego

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// Layered containers let repeated embed operations against the same
// carrier and password accumulate secrets instead of overwriting them.
// The container is itself a frame body: an inner magic and version
// byte followed by a deterministic-CBOR entry list. State machine per
// carrier: empty -> single payload -> layered(n), append-only.

// layeredMagic tags a payload body as a layered container. Wire-format
// constant.
var layeredMagic = []byte("VEILFORGE_LAYERED_V1")

// layeredVersion is the container format version byte.
const layeredVersion = 1

// layeredEntryDomain is the BLAKE3 keyed-hash domain for entry
// digests. ASCII zero-padded to the required 32 bytes; readable in
// hex dumps without weakening the hash.
var layeredEntryDomain = [32]byte{
	'v', 'e', 'i', 'l', 'f', 'o', 'r', 'g', 'e', '.',
	'l', 'a', 'y', 'e', 'r', 'e', 'd', '.', 'e', 'n', 't', 'r', 'y',
}

// layeredEntry is one secret inside a layered container.
type layeredEntry struct {
	Filename string `cbor:"filename"`
	MimeHint string `cbor:"mime_hint"`
	Kind     string `cbor:"kind"`
	Label    string `cbor:"label,omitempty"`
	Data     []byte `cbor:"data"`

	// Digest is the keyed BLAKE3 of Data. Each entry verifies
	// independently, so one corrupted entry does not poison its
	// siblings.
	Digest []byte `cbor:"digest"`
}

// CBOR modes: Core Deterministic Encoding on the way out so the same
// entries always serialize to identical bytes, permissive standard
// decoding on the way in.
var (
	layeredEncMode cbor.EncMode
	layeredDecMode cbor.DecMode
)

func init() {
	var err error
	layeredEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("stego: CBOR encoder initialization failed: " + err.Error())
	}
	layeredDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("stego: CBOR decoder initialization failed: " + err.Error())
	}
}

// entryDigest computes the keyed BLAKE3 digest of entry data.
func entryDigest(data []byte) []byte {
	hasher, err := blake3.NewKeyed(layeredEntryDomain[:])
	if err != nil {
		panic("stego: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	return hasher.Sum(nil)
}

// isLayered reports whether decoded payload bytes are a layered
// container.
func isLayered(payload []byte) bool {
	return bytes.HasPrefix(payload, layeredMagic) &&
		len(payload) > len(layeredMagic) &&
		payload[len(layeredMagic)] == layeredVersion
}

// entryFromPayload converts a payload into a container entry.
func entryFromPayload(p Payload) layeredEntry {
	return layeredEntry{
		Filename: p.Filename,
		MimeHint: p.MimeHint,
		Kind:     string(p.Kind),
		Label:    p.Label,
		Data:     p.Bytes,
		Digest:   entryDigest(p.Bytes),
	}
}

// payloadFromEntry converts a container entry back into a payload.
// A digest mismatch sets the integrity warning under lenient
// verification and fails under strict.
func payloadFromEntry(e layeredEntry, strict bool) (Payload, error) {
	warn := !bytes.Equal(entryDigest(e.Data), e.Digest)
	if warn && strict {
		return Payload{}, fmt.Errorf("%w: layered entry %q", ErrChecksumMismatch, e.Filename)
	}
	return Payload{
		Filename:         e.Filename,
		MimeHint:         e.MimeHint,
		Kind:             PayloadKind(e.Kind),
		Bytes:            e.Data,
		Checksum:         checksumHex(e.Data),
		Label:            e.Label,
		IntegrityWarning: warn,
	}, nil
}

// encodeLayered serializes entries as magic || version || CBOR array.
func encodeLayered(entries []layeredEntry) ([]byte, error) {
	body, err := layeredEncMode.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encoding layered container: %w", err)
	}
	out := make([]byte, 0, len(layeredMagic)+1+len(body))
	out = append(out, layeredMagic...)
	out = append(out, layeredVersion)
	return append(out, body...), nil
}

// decodeLayered parses a layered container produced by encodeLayered.
func decodeLayered(payload []byte) ([]layeredEntry, error) {
	if !isLayered(payload) {
		return nil, ErrMagicMismatch
	}
	var entries []layeredEntry
	if err := layeredDecMode.Unmarshal(payload[len(layeredMagic)+1:], &entries); err != nil {
		return nil, fmt.Errorf("decoding layered container: %w", err)
	}
	return entries, nil
}

// mergeLayered appends a new payload to whatever already existed.
// existing holds the previously extracted payloads in insertion order
// (nil for a fresh carrier). Entries are never removed or reordered.
func mergeLayered(existing []Payload, next Payload) []layeredEntry {
	entries := make([]layeredEntry, 0, len(existing)+1)
	for _, p := range existing {
		entries = append(entries, entryFromPayload(p))
	}
	return append(entries, entryFromPayload(next))
}
