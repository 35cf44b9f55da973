package stego

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

type quantumCarrier struct{}

func (quantumCarrier) Kind() CarrierKind { return CarrierKind("quantum") }

func TestRouter_EmbedExtractText(t *testing.T) {
	router := NewDefaultRouter()
	carrier := testImageCarrier(64, 64)

	out, err := router.Embed(context.Background(), carrier, NewTextPayload("hello"), WithPassword("pw1"))
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if out.ActualFormat != "png" {
		t.Errorf("ActualFormat = %q, want %q", out.ActualFormat, "png")
	}
	if out.CapacityUsedPct <= 0 || out.CapacityUsedPct > 100 {
		t.Errorf("CapacityUsedPct = %v, want (0, 100]", out.CapacityUsedPct)
	}

	payloads, err := router.Extract(context.Background(), out.Carrier, WithPassword("pw1"))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("Extract() payloads = %d, want 1", len(payloads))
	}
	p := payloads[0]
	if p.Filename != "embedded_text.txt" {
		t.Errorf("Filename = %q, want %q", p.Filename, "embedded_text.txt")
	}
	if p.Kind != PayloadText {
		t.Errorf("Kind = %q, want %q", p.Kind, PayloadText)
	}
	if !bytes.Equal(p.Bytes, []byte("hello")) {
		t.Errorf("Bytes = %q, want %q", p.Bytes, "hello")
	}
	if p.IntegrityWarning {
		t.Error("IntegrityWarning set on clean extraction")
	}
}

func TestRouter_LayeredAccumulation(t *testing.T) {
	router := NewDefaultRouter()
	carrier := testImageCarrier(64, 64)
	ctx := context.Background()

	first, err := router.Embed(ctx, carrier, NewTextPayload("hello"), WithPassword("pw1"))
	if err != nil {
		t.Fatalf("first Embed() error: %v", err)
	}

	blob := []byte{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	second, err := router.Embed(ctx, first.Carrier, NewFilePayload("x.bin", blob), WithPassword("pw1"))
	if err != nil {
		t.Fatalf("second Embed() error: %v", err)
	}

	third, err := router.Embed(ctx, second.Carrier, NewTextPayload("third layer"), WithPassword("pw1"))
	if err != nil {
		t.Fatalf("third Embed() error: %v", err)
	}

	payloads, err := router.Extract(ctx, third.Carrier, WithPassword("pw1"))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(payloads) != 3 {
		t.Fatalf("Extract() payloads = %d, want 3", len(payloads))
	}
	if payloads[0].Filename != "embedded_text.txt" || !bytes.Equal(payloads[0].Bytes, []byte("hello")) {
		t.Errorf("payloads[0] = %q %q, want the first secret", payloads[0].Filename, payloads[0].Bytes)
	}
	if payloads[0].Kind != PayloadText {
		t.Errorf("payloads[0].Kind = %q, want %q", payloads[0].Kind, PayloadText)
	}
	if payloads[1].Filename != "x.bin" || !bytes.Equal(payloads[1].Bytes, blob) {
		t.Errorf("payloads[1] = %q %v, want x.bin", payloads[1].Filename, payloads[1].Bytes)
	}
	if payloads[1].Kind != PayloadFile {
		t.Errorf("payloads[1].Kind = %q, want %q", payloads[1].Kind, PayloadFile)
	}
	if !bytes.Equal(payloads[2].Bytes, []byte("third layer")) {
		t.Errorf("payloads[2].Bytes = %q, want %q", payloads[2].Bytes, "third layer")
	}
}

func TestRouter_WrongPasswordFailsClosed(t *testing.T) {
	router := NewDefaultRouter()
	ctx := context.Background()

	out, err := router.Embed(ctx, testImageCarrier(64, 64), NewTextPayload("secret"), WithPassword("right"))
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	// Wrong password and missing password must both read exactly like
	// an empty carrier.
	for _, opts := range [][]Option{
		{WithPassword("wrong")},
		nil,
	} {
		payloads, err := router.Extract(ctx, out.Carrier, opts...)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Extract() error = %v, want ErrNotFound", err)
		}
		if payloads != nil {
			t.Error("Extract() returned payloads despite failed authentication")
		}
	}
}

func TestRouter_DifferentPasswordOverwrites(t *testing.T) {
	router := NewDefaultRouter()
	ctx := context.Background()

	first, err := router.Embed(ctx, testImageCarrier(64, 64), NewTextPayload("old"), WithPassword("pw1"))
	if err != nil {
		t.Fatalf("first Embed() error: %v", err)
	}
	second, err := router.Embed(ctx, first.Carrier, NewTextPayload("new"), WithPassword("pw2"))
	if err != nil {
		t.Fatalf("second Embed() error: %v", err)
	}

	payloads, err := router.Extract(ctx, second.Carrier, WithPassword("pw2"))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(payloads) != 1 || !bytes.Equal(payloads[0].Bytes, []byte("new")) {
		t.Errorf("Extract() = %d payloads, want the overwriting secret alone", len(payloads))
	}

	if _, err := router.Extract(ctx, second.Carrier, WithPassword("pw1")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Extract() with stale password error = %v, want ErrNotFound", err)
	}
}

func TestRouter_PlaintextByteCarrier(t *testing.T) {
	router := NewDefaultRouter()
	carrier := &ByteCarrier{Data: make([]byte, 4096), Format: "bin"}

	out, err := router.Embed(context.Background(), carrier, NewTextPayload("no password"))
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	payloads, err := router.Extract(context.Background(), out.Carrier)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(payloads) != 1 || !bytes.Equal(payloads[0].Bytes, []byte("no password")) {
		t.Fatalf("Extract() = %+v, want the plaintext secret", payloads)
	}
}

func TestRouter_AudioRoundTrip(t *testing.T) {
	router := NewDefaultRouter()
	carrier := testAudioCarrier(32768)

	out, err := router.Embed(context.Background(), carrier, NewTextPayload("in the wavelets"), WithPassword("pw"))
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if out.ActualFormat != "wav" {
		t.Errorf("ActualFormat = %q, want %q", out.ActualFormat, "wav")
	}

	payloads, err := router.Extract(context.Background(), out.Carrier, WithPassword("pw"))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(payloads) != 1 || !bytes.Equal(payloads[0].Bytes, []byte("in the wavelets")) {
		t.Fatalf("Extract() = %+v, want the audio secret", payloads)
	}
}

func TestRouter_VideoRoundTrip(t *testing.T) {
	router := NewDefaultRouter()
	carrier := testVideoCarrier(4)
	carrier.Format = "mp4"

	out, err := router.Embed(context.Background(), carrier, NewTextPayload("moving pictures"))
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if out.ActualFormat != "avi" {
		t.Errorf("ActualFormat = %q, want %q", out.ActualFormat, "avi")
	}
	if len(out.Notices) != 1 || out.Notices[0].Code != NoticeFormatChanged {
		t.Errorf("Notices = %+v, want a format change notice", out.Notices)
	}

	payloads, err := router.Extract(context.Background(), out.Carrier)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(payloads) != 1 || !bytes.Equal(payloads[0].Bytes, []byte("moving pictures")) {
		t.Fatalf("Extract() = %+v, want the video secret", payloads)
	}
}

// corruptBody flips two embedded bits inside the body region of a
// plain single-payload container embedded at depth 2 in an image.
func corruptBody(t *testing.T, img *ImageCarrier, p Payload) {
	t.Helper()
	frameBytes, err := serializeFrame(magicGeneric, frameMeta{
		Filename: p.Filename,
		Size:     len(p.Bytes),
		Type:     p.MimeHint,
		Kind:     string(p.Kind),
		Checksum: p.Checksum,
	}, p.Bytes)
	if err != nil {
		t.Fatalf("serializeFrame() error: %v", err)
	}
	bodyOff := len(frameBytes) - len(p.Bytes)
	img.Pix[(bodyOff+10)*4] ^= 0x03
}

func TestRouter_CorruptionSetsIntegrityWarning(t *testing.T) {
	router := NewDefaultRouter()
	payload := NewBinaryPayload(bytes.Repeat([]byte{0x5C}, 64))

	out, err := router.Embed(context.Background(), testImageCarrier(64, 64), payload)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	img := out.Carrier.(*ImageCarrier)
	corruptBody(t, img, payload)

	payloads, err := router.Extract(context.Background(), img)
	if err != nil {
		t.Fatalf("Extract() after corruption error: %v", err)
	}
	if !payloads[0].IntegrityWarning {
		t.Error("IntegrityWarning not set for corrupted body")
	}
	if bytes.Equal(payloads[0].Bytes, payload.Bytes) {
		t.Error("corrupted extraction returned pristine bytes")
	}
}

func TestRouter_StrictChecksumFailsOnCorruption(t *testing.T) {
	router := NewDefaultRouter()
	payload := NewBinaryPayload(bytes.Repeat([]byte{0x5C}, 64))

	out, err := router.Embed(context.Background(), testImageCarrier(64, 64), payload)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	img := out.Carrier.(*ImageCarrier)
	corruptBody(t, img, payload)

	_, err = router.Extract(context.Background(), img, WithStrictChecksum())
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Extract() strict error = %v, want ErrChecksumMismatch", err)
	}
}

func TestRouter_CompressionUnlocksTightCarrier(t *testing.T) {
	router := NewDefaultRouter()
	carrier := &ByteCarrier{Data: make([]byte, 600), Format: "bin"}
	payload := NewBinaryPayload(bytes.Repeat([]byte("A"), 2000))
	ctx := context.Background()

	if _, err := router.Embed(ctx, carrier, payload); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("Embed() without compression error = %v, want ErrCapacityExceeded", err)
	}

	out, err := router.Embed(ctx, carrier, payload, WithCompression())
	if err != nil {
		t.Fatalf("Embed() with compression error: %v", err)
	}
	payloads, err := router.Extract(ctx, out.Carrier)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if !bytes.Equal(payloads[0].Bytes, payload.Bytes) {
		t.Error("compressed round trip mismatch")
	}
	if payloads[0].IntegrityWarning {
		t.Error("IntegrityWarning set on clean compressed extraction")
	}
}

func TestRouter_CapacityExceeded(t *testing.T) {
	router := NewDefaultRouter()
	carrier := testImageCarrier(8, 8)
	payload := NewBinaryPayload(make([]byte, 4096))

	_, err := router.Embed(context.Background(), carrier, payload)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("Embed() error = %v, want ErrCapacityExceeded", err)
	}
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Errorf("Embed() error is not a *CapacityError: %v", err)
	}
}

func TestRouter_Capacity(t *testing.T) {
	router := NewDefaultRouter()
	got, err := router.Capacity(testImageCarrier(64, 64))
	if err != nil {
		t.Fatalf("Capacity() error: %v", err)
	}
	// 12288 pixel bytes at 8 bits each.
	if got != 12288 {
		t.Errorf("Capacity() = %d, want 12288", got)
	}
}

func TestRouter_Label(t *testing.T) {
	router := NewDefaultRouter()
	carrier := &ByteCarrier{Data: make([]byte, 4096)}

	out, err := router.Embed(context.Background(), carrier, NewTextPayload("tagged"), WithLabel("batch-7"))
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	payloads, err := router.Extract(context.Background(), out.Carrier)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if payloads[0].Label != "batch-7" {
		t.Errorf("Label = %q, want %q", payloads[0].Label, "batch-7")
	}
}

func TestRouter_UnsupportedCarrier(t *testing.T) {
	router := NewDefaultRouter()
	if _, err := router.Embed(context.Background(), quantumCarrier{}, NewTextPayload("x")); !errors.Is(err, ErrUnsupportedCarrier) {
		t.Errorf("Embed() error = %v, want ErrUnsupportedCarrier", err)
	}
	if _, err := router.Extract(context.Background(), quantumCarrier{}); !errors.Is(err, ErrUnsupportedCarrier) {
		t.Errorf("Extract() error = %v, want ErrUnsupportedCarrier", err)
	}
	if _, err := router.Capacity(quantumCarrier{}); !errors.Is(err, ErrUnsupportedCarrier) {
		t.Errorf("Capacity() error = %v, want ErrUnsupportedCarrier", err)
	}
}

func TestRouter_ExplicitCodecList(t *testing.T) {
	router := NewRouter(NewLSBByteCodec())
	if _, err := router.Capacity(testImageCarrier(8, 8)); !errors.Is(err, ErrUnsupportedCarrier) {
		t.Errorf("Capacity() on unregistered kind error = %v, want ErrUnsupportedCarrier", err)
	}
	if _, err := router.Capacity(&ByteCarrier{Data: make([]byte, 128)}); err != nil {
		t.Errorf("Capacity() on registered kind error: %v", err)
	}
}

func TestRouter_EmptyCarrierNotFound(t *testing.T) {
	router := NewDefaultRouter()
	_, err := router.Extract(context.Background(), testImageCarrier(64, 64))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Extract() on empty carrier error = %v, want ErrNotFound", err)
	}

	var exErr *ExtractError
	if !errors.As(err, &exErr) {
		t.Fatalf("Extract() error is not an *ExtractError: %v", err)
	}
	if exErr.Kind != KindImage {
		t.Errorf("ExtractError.Kind = %q, want %q", exErr.Kind, KindImage)
	}
}
