package stego

import (
	"bytes"
	"testing"
)

func TestCompressPayload_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("the same phrase over and over "), 100)

	for _, level := range compressionLadder {
		compressed, err := compressPayload(data, level)
		if err != nil {
			t.Fatalf("compressPayload(level %d) error: %v", level, err)
		}
		if len(compressed) >= len(data) {
			t.Errorf("compressPayload(level %d) did not shrink repetitive input: %d -> %d", level, len(data), len(compressed))
		}

		got, err := decompressPayload(compressed, len(data))
		if err != nil {
			t.Fatalf("decompressPayload(level %d) error: %v", level, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("decompressPayload(level %d) round trip mismatch", level)
		}
	}
}

func TestDecompressPayload_EnforcesBound(t *testing.T) {
	data := bytes.Repeat([]byte("a"), 1000)
	compressed, err := compressPayload(data, 6)
	if err != nil {
		t.Fatalf("compressPayload() error: %v", err)
	}

	if _, err := decompressPayload(compressed, 100); err == nil {
		t.Error("decompressPayload() accepted a stream exceeding the declared size")
	}
}

func TestDecompressPayload_Garbage(t *testing.T) {
	if _, err := decompressPayload([]byte("not a zlib stream"), 100); err == nil {
		t.Error("decompressPayload() accepted garbage input")
	}
}
