package stego

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// videoPixelStride selects every Nth byte of a video frame. Spacing
// the writes reduces visible artifacting and block-recompression
// damage; images use every byte since a lossless save path is forced.
const videoPixelStride = 8

// Formats whose save path preserves sample bytes exactly. Anything
// else gets redirected to the medium's lossless default with a
// FormatChanged notice.
var (
	losslessImageFormats = map[string]bool{"png": true, "bmp": true, "tiff": true, "tif": true}
	losslessVideoFormats = map[string]bool{"avi": true}
)

// LSBPixelCodec hides bits in the low bits of pixel channel bytes. It
// serves decoded images and video frame sequences. Video embedding
// fills leading frames first and leaves trailing frames untouched.
type LSBPixelCodec struct{}

// NewLSBPixelCodec returns the image/video codec.
func NewLSBPixelCodec() *LSBPixelCodec { return &LSBPixelCodec{} }

func (c *LSBPixelCodec) Kinds() []CarrierKind { return []CarrierKind{KindImage, KindVideo} }

func (c *LSBPixelCodec) CapacityBits(carrier Carrier, redundancy int) (uint64, error) {
	maxBPU := bitsPerUnitCandidates[len(bitsPerUnitCandidates)-1]
	switch cr := carrier.(type) {
	case *ImageCarrier:
		return unitCapacityBits(len(cr.Pix), 0, 1, maxBPU, redundancy), nil
	case *VideoCarrier:
		return videoCapacityBits(cr, maxBPU, redundancy), nil
	default:
		return 0, fmt.Errorf("%w: %s carrier passed to pixel codec", ErrUnsupportedCarrier, carrier.Kind())
	}
}

// videoCapacityBits sums per-frame selected units. Selection restarts
// at byte 0 of each frame, so frames contribute independently.
func videoCapacityBits(v *VideoCarrier, bitsPerUnit, redundancy int) uint64 {
	var selected uint64
	for _, f := range v.Frames {
		selected += uint64((len(f) + videoPixelStride - 1) / videoPixelStride)
	}
	return selected * uint64(bitsPerUnit) / uint64(redundancy)
}

func (c *LSBPixelCodec) Embed(ctx context.Context, carrier Carrier, frameBytes []byte, redundancy int) (Carrier, *EmbedInfo, error) {
	switch cr := carrier.(type) {
	case *ImageCarrier:
		return c.embedImage(ctx, cr, frameBytes, redundancy)
	case *VideoCarrier:
		return c.embedVideo(ctx, cr, frameBytes, redundancy)
	default:
		return nil, nil, fmt.Errorf("%w: %s carrier passed to pixel codec", ErrUnsupportedCarrier, carrier.Kind())
	}
}

func (c *LSBPixelCodec) embedImage(ctx context.Context, img *ImageCarrier, frameBytes []byte, redundancy int) (Carrier, *EmbedInfo, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, nil, err
	}
	out := img.Clone()
	bits := toBits(frameBytes)

	plan, err := planUnits(uint64(len(bits)), len(out.Pix), 0, 1, redundancy)
	if err != nil {
		return nil, nil, err
	}

	physical := replicate(bits, plan.Redundancy)
	embedBitsInBytes(out.Pix, physical, plan)

	actual, changed := losslessFormat(out.Format, losslessImageFormats, "png")
	out.Format = actual
	maxBPU := bitsPerUnitCandidates[len(bitsPerUnitCandidates)-1]
	info := &EmbedInfo{
		Plan:          plan,
		UsedBits:      uint64(len(bits)),
		AvailableBits: unitCapacityBits(len(out.Pix), 0, 1, maxBPU, redundancy),
		ActualFormat:  actual,
		FormatChanged: changed,
	}
	return out, info, nil
}

func (c *LSBPixelCodec) embedVideo(ctx context.Context, vid *VideoCarrier, frameBytes []byte, redundancy int) (Carrier, *EmbedInfo, error) {
	out := vid.Clone()
	bits := toBits(frameBytes)

	// The bit-depth ladder runs against the whole frame sequence;
	// per-frame placement then consumes the physical stream in frame
	// order.
	var plan EmbeddingPlan
	var capacity uint64
	found := false
	for _, bpu := range bitsPerUnitCandidates {
		capacity = videoCapacityBits(out, bpu, redundancy)
		if uint64(len(bits)) <= capacity {
			plan = EmbeddingPlan{BitsPerUnit: bpu, Redundancy: redundancy, UnitStride: videoPixelStride}
			found = true
			break
		}
	}
	if !found {
		return nil, nil, &CapacityError{NeededBits: uint64(len(bits)), AvailableBits: capacity}
	}

	physical := replicate(bits, plan.Redundancy)
	consumed := 0
	for _, framePix := range out.Frames {
		if consumed >= len(physical) {
			break
		}
		if err := checkCancel(ctx); err != nil {
			return nil, nil, err
		}
		consumed += embedBitsInBytes(framePix, physical[consumed:], plan)
	}

	actual, changed := losslessFormat(out.Format, losslessVideoFormats, "avi")
	out.Format = actual
	maxBPU := bitsPerUnitCandidates[len(bitsPerUnitCandidates)-1]
	info := &EmbedInfo{
		Plan:          plan,
		UsedBits:      uint64(len(bits)),
		AvailableBits: videoCapacityBits(out, maxBPU, redundancy),
		ActualFormat:  actual,
		FormatChanged: changed,
	}
	return out, info, nil
}

func (c *LSBPixelCodec) Extract(ctx context.Context, carrier Carrier, magic []byte, redundancy, scanLimit int) (*frame, error) {
	switch cr := carrier.(type) {
	case *ImageCarrier:
		return c.extractBuffers(ctx, [][]byte{cr.Pix}, 1, magic, redundancy, scanLimit)
	case *VideoCarrier:
		return c.extractBuffers(ctx, cr.Frames, videoPixelStride, magic, redundancy, scanLimit)
	default:
		return nil, fmt.Errorf("%w: %s carrier passed to pixel codec", ErrUnsupportedCarrier, carrier.Kind())
	}
}

// extractBuffers walks the bit-depth ladder. Within a depth, buffers
// are decoded in order; after each buffer the accumulated bytes are
// searched for a frame, so extraction from a long video stops as soon
// as the container is complete. A depth with no magic inside the scan
// bound is abandoned without decoding the remaining buffers.
func (c *LSBPixelCodec) extractBuffers(ctx context.Context, buffers [][]byte, stride int, magic []byte, redundancy, scanLimit int) (*frame, error) {
	if scanLimit <= 0 {
		scanLimit = defaultMagicScan
	}
	var firstErr error
	for _, depth := range extractBitDepths {
		var raw []byte
		sawPartial := false
		for _, buf := range buffers {
			if err := checkCancel(ctx); err != nil {
				return nil, err
			}
			raw = append(raw, extractBitsFromBytes(buf, 0, stride, depth, 0)...)
			decoded, err := fromBits(truncateToBytes(collapse(raw, redundancy)))
			if err != nil {
				continue
			}
			f, err := findFrame(decoded, magic, scanLimit)
			if err == nil {
				return f, nil
			}
			if errors.Is(err, ErrTruncatedBody) || errors.Is(err, ErrTruncatedMetadata) {
				// Magic located; the container continues in later
				// frames.
				sawPartial = true
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if !sawPartial && len(decoded) > scanLimit+len(magic) {
				// Scan bound exhausted with no magic at this depth.
				break
			}
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, ErrNotFound
}

// losslessFormat maps a requested output format onto the medium's
// lossless set, redirecting to fallback when the request would destroy
// embedded bits. The boolean reports whether a redirect happened.
func losslessFormat(requested string, lossless map[string]bool, fallback string) (string, bool) {
	norm := strings.ToLower(strings.TrimPrefix(requested, "."))
	if norm == "" {
		return fallback, false
	}
	if lossless[norm] {
		return norm, false
	}
	return fallback, true
}
