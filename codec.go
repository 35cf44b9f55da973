package stego

import "context"

// CarrierCodec is the common embed/extract contract. One
// implementation exists per medium: LSBByteCodec for generic and
// document carriers, LSBPixelCodec for images and video frames,
// WaveletAudioCodec for audio samples.
//
// Embed returns a new carrier; the input is never mutated. Extract
// re-derives placement from the carrier alone using the same
// deterministic striding rules as Embed.
type CarrierCodec interface {
	// Kinds reports the carrier kinds this codec serves.
	Kinds() []CarrierKind

	// CapacityBits reports the maximum embeddable logical bits at the
	// widest bits-per-unit setting for the given redundancy.
	CapacityBits(c Carrier, redundancy int) (uint64, error)

	// Embed hides the serialized frame in a copy of the carrier.
	Embed(ctx context.Context, c Carrier, frameBytes []byte, redundancy int) (Carrier, *EmbedInfo, error)

	// Extract recovers and parses a frame with the given magic, or
	// fails with ErrNotFound after a bounded search.
	Extract(ctx context.Context, c Carrier, magic []byte, redundancy, scanLimit int) (*frame, error)
}

// EmbedInfo reports placement facts about a completed embed.
type EmbedInfo struct {
	Plan          EmbeddingPlan
	UsedBits      uint64
	AvailableBits uint64

	// ActualFormat is the output format the caller must save the
	// carrier as. It differs from the requested format when a lossy
	// format would destroy the embedded bits; FormatChanged is set in
	// that case. First-class output, not something to probe for.
	ActualFormat  string
	FormatChanged bool
}

// magicFor selects the per-medium container magic.
func magicFor(kind CarrierKind) []byte {
	switch kind {
	case KindAudio:
		return magicAudio
	case KindVideo:
		return magicVideo
	default:
		return magicGeneric
	}
}

// defaultRedundancy is the per-medium redundancy applied when options
// leave it unset. Pixel and byte carriers rely on unit striding and
// adaptive bit depth instead of replication; the audio codec needs
// replication to survive coefficient quantization.
var defaultRedundancy = map[CarrierKind]int{
	KindGeneric: 1,
	KindImage:   1,
	KindVideo:   1,
	KindAudio:   2,
}

// embedBitsInBytes writes physical bits into the low plan.BitsPerUnit
// bits of selected buffer bytes, in place. Selection walks from
// plan.HeaderSkip at plan.UnitStride. Within a byte, bit offsets fill
// ascending from 0. Returns the number of bits consumed.
func embedBitsInBytes(buf []byte, bits []byte, plan EmbeddingPlan) int {
	stride := plan.UnitStride
	if stride < 1 {
		stride = 1
	}
	consumed := 0
	mask := byte(0xFF << uint(plan.BitsPerUnit))
	for idx := plan.HeaderSkip; idx < len(buf) && consumed < len(bits); idx += stride {
		b := buf[idx] & mask
		for off := 0; off < plan.BitsPerUnit && consumed < len(bits); off++ {
			b |= (bits[consumed] & 1) << uint(off)
			consumed++
		}
		buf[idx] = b
	}
	return consumed
}

// extractBitsFromBytes reads the low bitsPerUnit bits of selected
// buffer bytes with the same walk as embedBitsInBytes. maxBits bounds
// the read; pass 0 to read every selected unit.
func extractBitsFromBytes(buf []byte, skip, stride, bitsPerUnit, maxBits int) []byte {
	if stride < 1 {
		stride = 1
	}
	capacity := (len(buf) - skip + stride - 1) / stride * bitsPerUnit
	if capacity < 0 {
		capacity = 0
	}
	if maxBits > 0 && capacity > maxBits {
		capacity = maxBits
	}
	bits := make([]byte, 0, capacity)
	for idx := skip; idx < len(buf); idx += stride {
		for off := 0; off < bitsPerUnit; off++ {
			bits = append(bits, (buf[idx]>>uint(off))&1)
			if maxBits > 0 && len(bits) >= maxBits {
				return bits
			}
		}
	}
	return bits
}

// checkCancel polls ctx between long loop iterations so an external
// scheduler can abort cleanly.
func checkCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
