package stego

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestLSBByteCodec_RoundTrip(t *testing.T) {
	codec := NewLSBByteCodec()
	carrier := &ByteCarrier{Data: make([]byte, 4096), Format: "bin"}
	body := []byte("hello")
	frameBytes := testFrameBytes(t, body)

	out, info, err := codec.Embed(context.Background(), carrier, frameBytes, 1)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if info.Plan.BitsPerUnit != 2 {
		t.Errorf("Plan.BitsPerUnit = %d, want 2", info.Plan.BitsPerUnit)
	}

	f, err := codec.Extract(context.Background(), out, magicGeneric, 1, 0)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if !bytes.Equal(f.body, body) {
		t.Errorf("Extract() body = %q, want %q", f.body, body)
	}
	if f.meta.Filename != "note.txt" {
		t.Errorf("Extract() Filename = %q, want %q", f.meta.Filename, "note.txt")
	}
}

func TestLSBByteCodec_InputUntouched(t *testing.T) {
	codec := NewLSBByteCodec()
	carrier := &ByteCarrier{Data: make([]byte, 4096)}

	if _, _, err := codec.Embed(context.Background(), carrier, testFrameBytes(t, []byte("x")), 1); err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if !bytes.Equal(carrier.Data, make([]byte, 4096)) {
		t.Error("Embed() mutated the input carrier")
	}
}

func TestLSBByteCodec_PDFHeaderUntouched(t *testing.T) {
	codec := NewLSBByteCodec()
	data := append([]byte("%PDF-1.4\n%\xE2\xE3\xCF\xD3\n"), make([]byte, 4096)...)
	carrier := &ByteCarrier{Data: data, Format: "pdf"}

	out, info, err := codec.Embed(context.Background(), carrier, testFrameBytes(t, []byte("hidden")), 1)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if info.Plan.HeaderSkip != skipPDF {
		t.Errorf("Plan.HeaderSkip = %d, want %d", info.Plan.HeaderSkip, skipPDF)
	}
	oc := out.(*ByteCarrier)
	if !bytes.Equal(oc.Data[:skipPDF], data[:skipPDF]) {
		t.Error("Embed() modified the PDF header region")
	}
}

func TestLSBByteCodec_DepthEscalationRoundTrip(t *testing.T) {
	// A payload too large for depth 2 forces the ladder up; extraction
	// must still find it by retrying depths.
	codec := NewLSBByteCodec()
	carrier := &ByteCarrier{Data: make([]byte, 2048)}
	body := make([]byte, 700)
	for i := range body {
		body[i] = byte(i * 31)
	}
	frameBytes := testFrameBytes(t, body)

	out, info, err := codec.Embed(context.Background(), carrier, frameBytes, 1)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if info.Plan.BitsPerUnit < 4 {
		t.Fatalf("Plan.BitsPerUnit = %d, expected escalation past 2", info.Plan.BitsPerUnit)
	}

	f, err := codec.Extract(context.Background(), out, magicGeneric, 1, 0)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if !bytes.Equal(f.body, body) {
		t.Error("Extract() body mismatch after depth escalation")
	}
}

func TestLSBByteCodec_ExactCapacityBoundary(t *testing.T) {
	codec := NewLSBByteCodec()
	carrier := &ByteCarrier{Data: make([]byte, 1024)}

	capacity, err := codec.CapacityBits(carrier, 1)
	if err != nil {
		t.Fatalf("CapacityBits() error: %v", err)
	}
	// 1014 usable bytes at depth 8.
	if capacity != 8112 {
		t.Fatalf("CapacityBits() = %d, want 8112", capacity)
	}

	if _, _, err := codec.Embed(context.Background(), carrier, make([]byte, capacity/8), 1); err != nil {
		t.Errorf("Embed() at exact capacity error: %v", err)
	}
	if _, _, err := codec.Embed(context.Background(), carrier, make([]byte, capacity/8+1), 1); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("Embed() one byte over error = %v, want ErrCapacityExceeded", err)
	}
}

func TestLSBByteCodec_RedundancyCorrectsFlips(t *testing.T) {
	codec := NewLSBByteCodec()
	carrier := &ByteCarrier{Data: make([]byte, 8192)}
	body := []byte("resilient")
	frameBytes := testFrameBytes(t, body)

	out, _, err := codec.Embed(context.Background(), carrier, frameBytes, 3)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	// Flip one embedded bit; the other two copies outvote it.
	oc := out.(*ByteCarrier)
	oc.Data[50] ^= 0x01

	f, err := codec.Extract(context.Background(), oc, magicGeneric, 3, 0)
	if err != nil {
		t.Fatalf("Extract() after single flip error: %v", err)
	}
	if !bytes.Equal(f.body, body) {
		t.Errorf("Extract() body = %q, want %q", f.body, body)
	}
}

func TestLSBByteCodec_CleanCarrierNotFound(t *testing.T) {
	codec := NewLSBByteCodec()
	carrier := &ByteCarrier{Data: make([]byte, 4096)}
	if _, err := codec.Extract(context.Background(), carrier, magicGeneric, 1, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("Extract() on clean carrier error = %v, want ErrNotFound", err)
	}
}

func TestLSBByteCodec_WrongCarrierType(t *testing.T) {
	codec := NewLSBByteCodec()
	img := &ImageCarrier{Width: 1, Height: 1, Channels: 3, Pix: make([]byte, 3)}
	if _, _, err := codec.Embed(context.Background(), img, []byte("x"), 1); !errors.Is(err, ErrUnsupportedCarrier) {
		t.Errorf("Embed() error = %v, want ErrUnsupportedCarrier", err)
	}
}
