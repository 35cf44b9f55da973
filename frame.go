package stego

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Per-medium container magics. Distinct fixed strings let a decoder
// disambiguate the source medium without external hints. Wire-format
// constants.
var (
	magicGeneric = []byte("VEILFORGE_UNIVERSAL_SAFE_V2")
	magicAudio   = []byte("VEILFORGE_AUDIO_V1")
	magicVideo   = []byte("VEILFORGE_VIDEO")
)

// maxMetadataLen bounds the metadata block. A parsed length above this
// means the candidate offset is noise, not a container.
const maxMetadataLen = 64 * 1024

// defaultMagicScan is how many leading decoded bytes are searched for
// a container magic before extraction gives up with ErrNotFound.
const defaultMagicScan = 4096

// frameMeta is the self-describing metadata block. Serialized as JSON
// with these exact keys; extraction needs no hints beyond the frame
// bytes themselves.
type frameMeta struct {
	Filename   string `json:"filename"`
	Size       int    `json:"size"`
	StoredSize int    `json:"stored_size"`
	Type       string `json:"type"`
	Kind       string `json:"kind,omitempty"`
	Label      string `json:"label,omitempty"`
	Checksum   string `json:"checksum"`
	Encrypted  bool   `json:"encrypted"`
	Compressed bool   `json:"compressed,omitempty"`
}

// frame is one deserialized container: metadata plus body. The body is
// plaintext payload bytes, a compressed blob, or SecretBox output,
// according to the metadata flags.
type frame struct {
	meta frameMeta
	body []byte
}

// serializeFrame writes magic || metadataLen(u32 LE) || metadata JSON
// || body. The stored_size field is forced to len(body) so the
// invariant holds regardless of what the caller put in meta.
func serializeFrame(magic []byte, meta frameMeta, body []byte) ([]byte, error) {
	meta.StoredSize = len(body)
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding frame metadata: %w", err)
	}

	out := make([]byte, 0, len(magic)+4+len(metaJSON)+len(body))
	out = append(out, magic...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(metaJSON)))
	out = append(out, metaJSON...)
	out = append(out, body...)
	return out, nil
}

// parseFrame deserializes a container whose magic starts at data[0].
func parseFrame(data, magic []byte) (*frame, error) {
	if !bytes.HasPrefix(data, magic) {
		return nil, ErrMagicMismatch
	}
	rest := data[len(magic):]
	if len(rest) < 4 {
		return nil, ErrTruncatedMetadata
	}
	metaLen := int(binary.LittleEndian.Uint32(rest))
	rest = rest[4:]
	if metaLen <= 0 || metaLen > maxMetadataLen || metaLen > len(rest) {
		return nil, ErrTruncatedMetadata
	}

	var meta frameMeta
	if err := json.Unmarshal(rest[:metaLen], &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedMetadata, err)
	}
	rest = rest[metaLen:]

	if meta.StoredSize < 0 || meta.StoredSize > len(rest) {
		return nil, ErrTruncatedBody
	}
	return &frame{meta: meta, body: rest[:meta.StoredSize]}, nil
}

// findFrame searches decoded carrier bytes for a container magic at
// byte-aligned offsets and parses the first valid frame. The search is
// bounded to scanLimit leading bytes so a carrier with no embedded
// data fails fast with ErrNotFound.
func findFrame(decoded, magic []byte, scanLimit int) (*frame, error) {
	if scanLimit <= 0 {
		scanLimit = defaultMagicScan
	}
	region := decoded
	if len(region) > scanLimit+len(magic) {
		region = region[:scanLimit+len(magic)]
	}

	// The first parse failure after a magic hit is kept so a carrier
	// holding a truncated container reports the truncation rather
	// than a bare not-found.
	var firstErr error
	offset := 0
	for offset < len(region) {
		idx := bytes.Index(region[offset:], magic)
		if idx < 0 {
			break
		}
		start := offset + idx
		f, err := parseFrame(decoded[start:], magic)
		if err == nil {
			return f, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		offset = start + 1
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, ErrNotFound
}
