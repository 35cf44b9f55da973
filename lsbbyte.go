package stego

import (
	"context"
	"errors"
	"fmt"
)

// LSBByteCodec hides bits in the low bits of raw carrier bytes. It
// serves document and generic binary carriers and is the fallback for
// any blob without a richer decoded form. A header region sized per
// document signature is never written so the format-identifying bytes
// stay intact.
type LSBByteCodec struct{}

// NewLSBByteCodec returns the generic/document codec.
func NewLSBByteCodec() *LSBByteCodec { return &LSBByteCodec{} }

func (c *LSBByteCodec) Kinds() []CarrierKind { return []CarrierKind{KindGeneric} }

func (c *LSBByteCodec) CapacityBits(carrier Carrier, redundancy int) (uint64, error) {
	bc, err := c.carrier(carrier)
	if err != nil {
		return 0, err
	}
	skip := headerSkipBytes(bc.Data)
	maxBPU := bitsPerUnitCandidates[len(bitsPerUnitCandidates)-1]
	return unitCapacityBits(len(bc.Data), skip, 1, maxBPU, redundancy), nil
}

func (c *LSBByteCodec) Embed(ctx context.Context, carrier Carrier, frameBytes []byte, redundancy int) (Carrier, *EmbedInfo, error) {
	bc, err := c.carrier(carrier)
	if err != nil {
		return nil, nil, err
	}
	if err := checkCancel(ctx); err != nil {
		return nil, nil, err
	}

	out := bc.Clone()
	skip := headerSkipBytes(out.Data)
	bits := toBits(frameBytes)

	plan, err := planUnits(uint64(len(bits)), len(out.Data), skip, 1, redundancy)
	if err != nil {
		return nil, nil, err
	}

	physical := replicate(bits, plan.Redundancy)
	if n := embedBitsInBytes(out.Data, physical, plan); n < len(physical) {
		return nil, nil, &CapacityError{
			NeededBits:    uint64(len(bits)),
			AvailableBits: unitCapacityBits(len(out.Data), skip, 1, plan.BitsPerUnit, redundancy),
		}
	}

	info := &EmbedInfo{
		Plan:          plan,
		UsedBits:      uint64(len(bits)),
		AvailableBits: unitCapacityBits(len(out.Data), skip, 1, bitsPerUnitCandidates[len(bitsPerUnitCandidates)-1], redundancy),
		ActualFormat:  out.Format,
	}
	return out, info, nil
}

func (c *LSBByteCodec) Extract(ctx context.Context, carrier Carrier, magic []byte, redundancy, scanLimit int) (*frame, error) {
	bc, err := c.carrier(carrier)
	if err != nil {
		return nil, err
	}
	skip := headerSkipBytes(bc.Data)

	// The embed bit depth is not recorded in the carrier; walk the
	// ladder until a depth yields a parseable frame.
	var firstErr error
	for _, depth := range extractBitDepths {
		if err := checkCancel(ctx); err != nil {
			return nil, err
		}
		raw := extractBitsFromBytes(bc.Data, skip, 1, depth, 0)
		logical := truncateToBytes(collapse(raw, redundancy))
		decoded, err := fromBits(logical)
		if err != nil {
			continue
		}
		f, err := findFrame(decoded, magic, scanLimit)
		if err == nil {
			return f, nil
		}
		if firstErr == nil && !errors.Is(err, ErrNotFound) {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, ErrNotFound
}

func (c *LSBByteCodec) carrier(carrier Carrier) (*ByteCarrier, error) {
	bc, ok := carrier.(*ByteCarrier)
	if !ok {
		return nil, fmt.Errorf("%w: %s carrier passed to byte codec", ErrUnsupportedCarrier, carrier.Kind())
	}
	return bc, nil
}
