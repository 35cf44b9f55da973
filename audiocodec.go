package stego

import (
	"context"
	"fmt"
)

const (
	// waveletLevel is the decomposition depth for audio embedding.
	waveletLevel = 5

	// detailBandCount is how many detail bands carry data, taken
	// coarsest first. The finest band is left untouched; it carries
	// the most audible noise per coefficient flip.
	detailBandCount = 4

	// segmentFraction bounds how much of the channel is transformed.
	// The tail is left untouched.
	segmentFraction = 0.95

	// minCoeffMagnitude floors the magnitude of a written coefficient
	// so the sign survives quantization on the save path.
	minCoeffMagnitude = 0.005

	// signReadThreshold separates positive (bit 1) from non-positive
	// (bit 0) coefficients on read.
	signReadThreshold = 0.001

	// minSegmentSamples is the shortest channel prefix the codec will
	// transform. Below this the coarsest decomposition level falls
	// under the filter length and the periodized transform stops
	// being exactly invertible.
	minSegmentSamples = 8 << waveletLevel
)

// losslessAudioFormats lists save formats that preserve sample values.
var losslessAudioFormats = map[string]bool{"wav": true, "flac": true, "aiff": true}

// WaveletAudioCodec hides bits as the signs of detail-band wavelet
// coefficients of channel 0. Each logical bit occupies redundancy-many
// consecutive coefficient slots; bands are filled in a fixed coarsest-
// first order, so embed and extract index identically with no
// randomness.
type WaveletAudioCodec struct{}

// NewWaveletAudioCodec returns the audio codec.
func NewWaveletAudioCodec() *WaveletAudioCodec { return &WaveletAudioCodec{} }

func (c *WaveletAudioCodec) Kinds() []CarrierKind { return []CarrierKind{KindAudio} }

// segmentLen computes the transformed prefix of the channel: the
// leading segmentFraction of samples, rounded down to a multiple of
// 2^waveletLevel so no level of the decomposition needs padding and
// coefficients survive the embed/reconstruct/re-decompose round trip
// exactly.
func segmentLen(sampleCount int) int {
	seg := int(float64(sampleCount) * segmentFraction)
	block := 1 << waveletLevel
	seg = seg / block * block
	if seg < minSegmentSamples {
		return 0
	}
	return seg
}

// dataBands returns the detail bands that carry data, coarsest first.
func dataBands(coeffs *dwtCoeffs) [][]float64 {
	n := detailBandCount
	if n > len(coeffs.details) {
		n = len(coeffs.details)
	}
	return coeffs.details[:n]
}

func (c *WaveletAudioCodec) CapacityBits(carrier Carrier, redundancy int) (uint64, error) {
	ac, err := c.carrier(carrier)
	if err != nil {
		return 0, err
	}
	seg := segmentLen(len(ac.Samples[0]))
	if seg == 0 {
		return 0, nil
	}
	coeffs := waveDecompose(ac.Samples[0][:seg], waveletLevel)
	return bandCapacityBits(coeffs, redundancy), nil
}

// bandCapacityBits sums whole bit slots across the data bands.
func bandCapacityBits(coeffs *dwtCoeffs, redundancy int) uint64 {
	var bits uint64
	for _, band := range dataBands(coeffs) {
		bits += uint64(len(band) / redundancy)
	}
	return bits
}

func (c *WaveletAudioCodec) Embed(ctx context.Context, carrier Carrier, frameBytes []byte, redundancy int) (Carrier, *EmbedInfo, error) {
	ac, err := c.carrier(carrier)
	if err != nil {
		return nil, nil, err
	}

	out := ac.Clone()
	channel := out.Samples[0]
	seg := segmentLen(len(channel))
	bits := toBits(frameBytes)

	var coeffs *dwtCoeffs
	var capacity uint64
	if seg > 0 {
		coeffs = waveDecompose(channel[:seg], waveletLevel)
		capacity = bandCapacityBits(coeffs, redundancy)
	}
	if coeffs == nil || uint64(len(bits)) > capacity {
		return nil, nil, &CapacityError{NeededBits: uint64(len(bits)), AvailableBits: capacity}
	}

	// Sequential band fill: band 0 takes the leading bits up to its
	// slot count, band 1 continues, and so on. Extraction reads every
	// slot of every band in the same order, so the recovered stream
	// lines up without a placement record.
	consumed := 0
	for _, band := range dataBands(coeffs) {
		if err := checkCancel(ctx); err != nil {
			return nil, nil, err
		}
		slots := len(band) / redundancy
		for j := 0; j < slots && consumed < len(bits); j++ {
			bit := bits[consumed]
			consumed++
			for r := 0; r < redundancy; r++ {
				idx := j*redundancy + r
				mag := band[idx]
				if mag < 0 {
					mag = -mag
				}
				if mag < minCoeffMagnitude {
					mag = minCoeffMagnitude
				}
				if bit == 1 {
					band[idx] = mag
				} else {
					band[idx] = -mag
				}
			}
		}
		if consumed >= len(bits) {
			break
		}
	}

	reconstructed := waveReconstruct(coeffs)
	copy(channel[:seg], reconstructed)

	actual, changed := losslessFormat(out.Format, losslessAudioFormats, "wav")
	out.Format = actual
	info := &EmbedInfo{
		Plan: EmbeddingPlan{
			BitsPerUnit: 1,
			Redundancy:  redundancy,
			UnitStride:  1,
		},
		UsedBits:      uint64(len(bits)),
		AvailableBits: capacity,
		ActualFormat:  actual,
		FormatChanged: changed,
	}
	return out, info, nil
}

func (c *WaveletAudioCodec) Extract(ctx context.Context, carrier Carrier, magic []byte, redundancy, scanLimit int) (*frame, error) {
	ac, err := c.carrier(carrier)
	if err != nil {
		return nil, err
	}
	seg := segmentLen(len(ac.Samples[0]))
	if seg == 0 {
		return nil, ErrNotFound
	}
	coeffs := waveDecompose(ac.Samples[0][:seg], waveletLevel)

	var logical []byte
	votes := make([]byte, redundancy)
	for _, band := range dataBands(coeffs) {
		if err := checkCancel(ctx); err != nil {
			return nil, err
		}
		slots := len(band) / redundancy
		for j := 0; j < slots; j++ {
			for r := 0; r < redundancy; r++ {
				if band[j*redundancy+r] > signReadThreshold {
					votes[r] = 1
				} else {
					votes[r] = 0
				}
			}
			logical = append(logical, vote(votes))
		}
	}

	decoded, err := fromBits(truncateToBytes(logical))
	if err != nil {
		return nil, err
	}
	return findFrame(decoded, magic, scanLimit)
}

func (c *WaveletAudioCodec) carrier(carrier Carrier) (*AudioCarrier, error) {
	ac, ok := carrier.(*AudioCarrier)
	if !ok {
		return nil, fmt.Errorf("%w: %s carrier passed to audio codec", ErrUnsupportedCarrier, carrier.Kind())
	}
	if len(ac.Samples) == 0 {
		return nil, fmt.Errorf("%w: audio carrier has no channels", ErrUnsupportedCarrier)
	}
	return ac, nil
}
