package stego

import (
	"bytes"
	"unicode/utf8"
)

// PayloadKind classifies what a payload held before embedding.
type PayloadKind string

const (
	// PayloadText is plain text entered directly by the caller.
	PayloadText PayloadKind = "text"

	// PayloadFile is a named file supplied by the caller.
	PayloadFile PayloadKind = "file"

	// PayloadBinary is an anonymous binary blob.
	PayloadBinary PayloadKind = "binary"
)

// textPayloadFilename is the filename recorded for direct text
// payloads. Wire-format constant.
const textPayloadFilename = "embedded_text.txt"

// Payload is one secret being hidden or recovered. Immutable once
// constructed; the checksum is computed over Bytes at construction
// time, before any compression or encryption.
type Payload struct {
	Filename string
	MimeHint string
	Kind     PayloadKind
	Bytes    []byte
	Checksum string

	// Label is an optional caller tag carried through layered
	// containers.
	Label string

	// IntegrityWarning is set on extracted payloads whose recovered
	// bytes did not match the embedded checksum under lenient
	// verification.
	IntegrityWarning bool
}

// NewTextPayload wraps direct text input as a payload.
func NewTextPayload(text string) Payload {
	data := []byte(text)
	return Payload{
		Filename: textPayloadFilename,
		MimeHint: "text/plain",
		Kind:     PayloadText,
		Bytes:    data,
		Checksum: checksumHex(data),
	}
}

// NewFilePayload wraps file content as a payload. The mime hint is
// sniffed from content signatures at construction time so extraction
// never has to guess a type from recovered bytes.
func NewFilePayload(filename string, data []byte) Payload {
	return Payload{
		Filename: filename,
		MimeHint: sniffMime(data),
		Kind:     PayloadFile,
		Bytes:    data,
		Checksum: checksumHex(data),
	}
}

// NewBinaryPayload wraps an anonymous blob as a payload.
func NewBinaryPayload(data []byte) Payload {
	return Payload{
		Filename: "payload.bin",
		MimeHint: sniffMime(data),
		Kind:     PayloadBinary,
		Bytes:    data,
		Checksum: checksumHex(data),
	}
}

// mimeSignature maps a leading byte signature to a mime type.
type mimeSignature struct {
	prefix []byte
	mime   string
}

// mimeSignatures is checked in order; first match wins. RIFF and some
// container formats need a secondary check below.
var mimeSignatures = []mimeSignature{
	{[]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
	{[]byte{0xFF, 0xD8, 0xFF}, "image/jpeg"},
	{[]byte("GIF87a"), "image/gif"},
	{[]byte("GIF89a"), "image/gif"},
	{[]byte("%PDF"), "application/pdf"},
	{[]byte("{\\rtf"), "application/rtf"},
	{[]byte{'P', 'K', 0x03, 0x04}, "application/zip"},
	{[]byte("ID3"), "audio/mpeg"},
	{[]byte{0xFF, 0xFB}, "audio/mpeg"},
	{[]byte{0x1F, 0x8B}, "application/gzip"},
}

// sniffMime detects a mime type from content signatures. Unknown
// binary content maps to application/octet-stream; valid UTF-8 with
// no NUL bytes maps to text/plain.
func sniffMime(data []byte) string {
	for _, sig := range mimeSignatures {
		if bytes.HasPrefix(data, sig.prefix) {
			return sig.mime
		}
	}

	// RIFF containers: WAV and AVI share the outer signature.
	if len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) {
		switch string(data[8:12]) {
		case "WAVE":
			return "audio/wav"
		case "AVI ":
			return "video/x-msvideo"
		}
	}

	// ISO base media: ftyp box at offset 4.
	if len(data) >= 8 && bytes.Equal(data[4:8], []byte("ftyp")) {
		return "video/mp4"
	}

	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	if len(sample) > 0 && utf8.Valid(sample) && !bytes.ContainsRune(sample, 0) {
		return "text/plain"
	}
	return "application/octet-stream"
}
