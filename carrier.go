package stego

// CarrierKind identifies the medium a carrier represents. The router
// dispatches to exactly one codec per kind.
type CarrierKind string

const (
	// KindGeneric covers documents and arbitrary binary blobs.
	KindGeneric CarrierKind = "generic"

	// KindImage covers decoded raster images (height x width x channels).
	KindImage CarrierKind = "image"

	// KindAudio covers decoded PCM sample buffers.
	KindAudio CarrierKind = "audio"

	// KindVideo covers decoded frame sequences.
	KindVideo CarrierKind = "video"
)

// validKinds contains all kinds the default codecs can serve.
var validKinds = map[CarrierKind]bool{
	KindGeneric: true,
	KindImage:   true,
	KindAudio:   true,
	KindVideo:   true,
}

// IsValidKind returns true if the kind is served by a built-in codec.
func IsValidKind(kind CarrierKind) bool {
	return validKinds[kind]
}

// Carrier is a medium-specific view of host data. Codecs borrow a
// carrier for the duration of one call and return a new, independent
// carrier on embed; the input is never mutated.
type Carrier interface {
	// Kind reports the medium this carrier represents.
	Kind() CarrierKind
}

// ByteCarrier is a raw byte buffer: documents, archives, any binary
// blob without a richer decoded form.
type ByteCarrier struct {
	Data []byte

	// Format is the caller-declared format name (e.g. "pdf", "rtf",
	// "bin"). Informational; embedding decisions key off content
	// signatures, not this name.
	Format string
}

func (c *ByteCarrier) Kind() CarrierKind { return KindGeneric }

// Clone returns a deep copy. Codecs embed into the copy so the
// caller's buffer stays untouched.
func (c *ByteCarrier) Clone() *ByteCarrier {
	data := make([]byte, len(c.Data))
	copy(data, c.Data)
	return &ByteCarrier{Data: data, Format: c.Format}
}

// ImageCarrier is a decoded raster image. Pix holds channel bytes in
// row-major order: Pix[(y*Width+x)*Channels+ch]. len(Pix) must equal
// Width*Height*Channels.
type ImageCarrier struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte

	// Format is the requested output format (e.g. "png", "jpg"). A
	// lossy request is answered with a lossless substitute and a
	// FormatChanged notice.
	Format string
}

func (c *ImageCarrier) Kind() CarrierKind { return KindImage }

// Clone returns a deep copy.
func (c *ImageCarrier) Clone() *ImageCarrier {
	pix := make([]byte, len(c.Pix))
	copy(pix, c.Pix)
	return &ImageCarrier{
		Width:    c.Width,
		Height:   c.Height,
		Channels: c.Channels,
		Pix:      pix,
		Format:   c.Format,
	}
}

// AudioCarrier is a decoded PCM buffer: one float64 slice per channel,
// samples normalized to [-1, 1]. Embedding touches only channel 0.
type AudioCarrier struct {
	Samples    [][]float64
	SampleRate int

	// Format is the requested output format (e.g. "wav", "flac",
	// "mp3"). Lossy requests are redirected to "wav".
	Format string
}

func (c *AudioCarrier) Kind() CarrierKind { return KindAudio }

// Clone returns a deep copy.
func (c *AudioCarrier) Clone() *AudioCarrier {
	samples := make([][]float64, len(c.Samples))
	for i, ch := range c.Samples {
		samples[i] = make([]float64, len(ch))
		copy(samples[i], ch)
	}
	return &AudioCarrier{
		Samples:    samples,
		SampleRate: c.SampleRate,
		Format:     c.Format,
	}
}

// VideoCarrier is a decoded frame sequence. Each frame holds
// Width*Height*Channels bytes in the same layout as ImageCarrier.Pix.
type VideoCarrier struct {
	Width    int
	Height   int
	Channels int
	FPS      float64
	Frames   [][]byte

	// Format is the requested container format (e.g. "mp4", "avi").
	// Lossy containers are redirected to "avi" so the embedded bits
	// survive the save path.
	Format string
}

func (c *VideoCarrier) Kind() CarrierKind { return KindVideo }

// Clone returns a deep copy.
func (c *VideoCarrier) Clone() *VideoCarrier {
	frames := make([][]byte, len(c.Frames))
	for i, f := range c.Frames {
		frames[i] = make([]byte, len(f))
		copy(frames[i], f)
	}
	return &VideoCarrier{
		Width:    c.Width,
		Height:   c.Height,
		Channels: c.Channels,
		FPS:      c.FPS,
		Frames:   frames,
		Format:   c.Format,
	}
}
