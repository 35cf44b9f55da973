package stego

import "bytes"

// EmbeddingPlan is the placement geometry for one embed call, derived
// from the carrier and payload size. Not persisted; extraction
// re-derives the same geometry from the carrier alone.
type EmbeddingPlan struct {
	BitsPerUnit int // low bits written per selected unit
	Redundancy  int // physical units per logical bit
	HeaderSkip  int // leading units never touched
	UnitStride  int // every Nth unit is selected
}

// bitsPerUnitCandidates is the escalation order for byte and pixel
// carriers: start subtle, widen only when the payload demands it.
// Wire-relevant: extraction retries the same ladder.
var bitsPerUnitCandidates = []int{2, 4, 8}

// extractBitDepths is the ladder extraction walks when probing an
// unknown carrier. It extends the embed ladder with a single-bit pass
// for containers written by older tools.
var extractBitDepths = []int{2, 4, 8, 1}

// Reserved header sizes per leading content signature. Embedding
// below these offsets corrupts format-identifying structure some
// viewers refuse to open.
const (
	skipRTFMax  = 100
	skipPDF     = 50
	skipZIP     = 30
	skipDefault = 10
)

// headerSkipBytes computes the reserved header region for a generic
// byte carrier. The skip depends only on the leading signature bytes,
// which are themselves inside every skip region and therefore never
// modified by embedding, so embed and extract always derive the same
// offset.
func headerSkipBytes(data []byte) int {
	switch {
	case bytes.HasPrefix(data, []byte("{\\rtf")):
		return skipRTFMax
	case bytes.HasPrefix(data, []byte("%PDF")):
		return skipPDF
	case bytes.HasPrefix(data, []byte{'P', 'K', 0x03, 0x04}):
		return skipZIP
	default:
		return skipDefault
	}
}

// unitCapacityBits computes how many logical bits fit in a unit run.
func unitCapacityBits(unitCount, headerSkip, unitStride, bitsPerUnit, redundancy int) uint64 {
	if unitStride < 1 {
		unitStride = 1
	}
	usable := unitCount - headerSkip
	if usable <= 0 {
		return 0
	}
	selected := (usable + unitStride - 1) / unitStride
	return uint64(selected) * uint64(bitsPerUnit) / uint64(redundancy)
}

// planUnits escalates bits-per-unit through the candidate ladder until
// the payload fits, or fails with a CapacityError quoting the
// capacity at the widest setting.
func planUnits(payloadBits uint64, unitCount, headerSkip, unitStride, redundancy int) (EmbeddingPlan, error) {
	var capacity uint64
	for _, bpu := range bitsPerUnitCandidates {
		capacity = unitCapacityBits(unitCount, headerSkip, unitStride, bpu, redundancy)
		if payloadBits <= capacity {
			return EmbeddingPlan{
				BitsPerUnit: bpu,
				Redundancy:  redundancy,
				HeaderSkip:  headerSkip,
				UnitStride:  unitStride,
			}, nil
		}
	}
	return EmbeddingPlan{}, &CapacityError{
		NeededBits:    payloadBits,
		AvailableBits: capacity,
	}
}
