package stego

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Payload compression. The body of a frame with the compressed flag
// set is a zlib stream; the metadata size field keeps the original
// byte count. Compression runs before encryption so the ciphertext
// hides the compressibility of the payload along with its content.

// compressionLadder is the escalation order when a compressed payload
// still overshoots carrier capacity.
var compressionLadder = []int{6, 8, 9}

// compressPayload deflates data at the given zlib level.
func compressPayload(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("compressing payload: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compressing payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compressing payload: %w", err)
	}
	return buf.Bytes(), nil
}

// decompressPayload inflates a zlib stream. maxSize bounds the output
// so a corrupted length cannot balloon memory; pass the metadata size
// field.
func decompressPayload(data []byte, maxSize int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	defer r.Close()

	limit := int64(maxSize) + 1
	out, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	if int64(len(out)) == limit {
		return nil, fmt.Errorf("decompressing payload: stream exceeds declared size %d", maxSize)
	}
	return out, nil
}
