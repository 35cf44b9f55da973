// Package stego hides arbitrary payloads inside carrier media
// (images, audio, video, documents), recoverable only with the
// correct password, while the carrier stays usable in its native
// viewer or player.
//
// # Architecture
//
// All operations are synchronous, CPU-bound pure functions over
// in-memory buffers. Decoding carriers from files and persisting the
// results belongs to the caller; the package neither reads nor writes
// storage. A Router drives the pipeline:
//
//	payload -> compress (optional) -> encrypt (optional) -> frame -> codec.Embed
//	codec.Extract -> frame -> decrypt -> decompress -> checksum -> payload(s)
//
// One codec exists per medium:
//
//   - LSBByteCodec: documents and generic binary blobs, low-bit
//     embedding with a signature-sized header region left untouched
//   - LSBPixelCodec: decoded images and video frame sequences
//   - WaveletAudioCodec: sign embedding in Daubechies-4 detail
//     coefficients of PCM samples
//
// # Basic Usage
//
//	router := stego.NewDefaultRouter()
//
//	carrier := &stego.ImageCarrier{
//	    Width: 64, Height: 64, Channels: 3,
//	    Pix:    make([]byte, 64*64*3),
//	    Format: "png",
//	}
//
//	out, err := router.Embed(ctx, carrier, stego.NewTextPayload("hello"),
//	    stego.WithPassword("pw1"))
//	// out.Carrier holds the data; save it as out.ActualFormat.
//
//	payloads, err := router.Extract(ctx, out.Carrier,
//	    stego.WithPassword("pw1"))
//
// # Layering
//
// Embedding into a carrier that already holds a container readable
// with the same password appends to a layered container instead of
// overwriting. Extraction then returns every payload in insertion
// order. Layering is append-only; there is no remove operation.
//
// # Security Properties
//
// Containers are sealed with AES-256-GCM under a key derived from the
// password via PBKDF2-HMAC-SHA256. A wrong password is observably
// identical to an empty carrier: both extract as ErrNotFound, and no
// partial plaintext is ever returned.
//
// Checksums detect corruption, not tampering (GCM handles tampering
// for encrypted containers). Verification is lenient by default:
// mismatched payloads are returned with IntegrityWarning set. With
// WithStrictChecksum a mismatch fails the extraction instead.
//
// # Format Preservation
//
// A lossy output format request (JPEG images, MP4 video, MP3 audio)
// would destroy the embedded bits on save. Embed answers such
// requests with a lossless substitute in EmbedOutput.ActualFormat and
// a FormatChanged notice; callers must honor it.
package stego
