package stego

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Notice is a structured, non-error advisory attached to an embed
// result.
type Notice struct {
	Code    string
	Message string
}

// NoticeFormatChanged reports that the output carrier must be saved in
// a different format than requested to keep the embedded bits intact.
const NoticeFormatChanged = "format_changed"

// EmbedOutput is the result of a successful embed.
type EmbedOutput struct {
	// Carrier is the new carrier holding the hidden payload. The
	// input carrier is untouched.
	Carrier Carrier

	// ActualFormat is the format the carrier must be saved as.
	ActualFormat string

	// CapacityUsedPct is the share of carrier capacity the container
	// consumed, in percent.
	CapacityUsedPct float64

	// Notices holds structured advisories such as a format change.
	Notices []Notice
}

// Router selects the carrier codec by carrier kind and drives the
// embed/extract pipeline: frame serialization, compression,
// encryption, capacity planning, and layered merging. Construction is
// explicit; there is no global codec registry.
type Router struct {
	codecs map[CarrierKind]CarrierCodec
}

// NewRouter builds a router from an explicit codec list. Later codecs
// win kind conflicts.
func NewRouter(codecs ...CarrierCodec) *Router {
	r := &Router{codecs: make(map[CarrierKind]CarrierCodec)}
	for _, c := range codecs {
		for _, kind := range c.Kinds() {
			r.codecs[kind] = c
		}
	}
	emitRouterCreated(context.Background(), len(codecs))
	return r
}

// NewDefaultRouter builds a router with the three built-in codecs
// covering generic, image, video, and audio carriers.
func NewDefaultRouter() *Router {
	return NewRouter(
		NewLSBByteCodec(),
		NewLSBPixelCodec(),
		NewWaveletAudioCodec(),
	)
}

// codecFor resolves the codec serving a carrier.
func (r *Router) codecFor(carrier Carrier) (CarrierCodec, error) {
	codec, ok := r.codecs[carrier.Kind()]
	if !ok {
		return nil, fmt.Errorf("%w: no codec for kind %q", ErrUnsupportedCarrier, carrier.Kind())
	}
	return codec, nil
}

// Capacity reports the maximum embeddable payload bytes for the
// carrier at default options. Container framing overhead comes out of
// the same space, so the largest payload that fits is slightly smaller.
func (r *Router) Capacity(carrier Carrier, opts ...Option) (uint64, error) {
	codec, err := r.codecFor(carrier)
	if err != nil {
		return 0, err
	}
	o := buildOptions(opts)
	bits, err := codec.CapacityBits(carrier, o.redundancyFor(carrier.Kind()))
	if err != nil {
		return 0, err
	}
	return bits / 8, nil
}

// Embed hides the payload in a copy of the carrier. When the carrier
// already holds a container readable with the same password, the new
// payload is appended to a layered container so earlier secrets
// survive; otherwise a fresh single-payload container is written.
func (r *Router) Embed(ctx context.Context, carrier Carrier, payload Payload, opts ...Option) (*EmbedOutput, error) {
	o := buildOptions(opts)
	start := time.Now()
	emitEmbedStart(ctx, carrier.Kind(), len(payload.Bytes))

	out, err := r.embed(ctx, carrier, payload, o)
	emitEmbedComplete(ctx, carrier.Kind(), out, o.Password != "", time.Since(start), err)
	return out, err
}

func (r *Router) embed(ctx context.Context, carrier Carrier, payload Payload, o *Options) (*EmbedOutput, error) {
	codec, err := r.codecFor(carrier)
	if err != nil {
		return nil, err
	}
	kind := carrier.Kind()
	redundancy := o.redundancyFor(kind)

	if o.Label != "" {
		payload.Label = o.Label
	}

	// Existing secrets are recoverable only with the embed password;
	// anything unreadable is indistinguishable from an empty carrier
	// and gets overwritten.
	existing := r.existingPayloads(ctx, codec, carrier, o)

	plaintext, meta, err := buildBody(existing, payload)
	if err != nil {
		return nil, err
	}

	var box *SecretBox
	if o.Password != "" {
		box, err = NewSecretBox(o.Password)
		if err != nil {
			return nil, err
		}
	}

	// One attempt per compression level; capacity failures escalate
	// the ladder, everything else aborts.
	levels := []int{0}
	if o.Compress {
		levels = compressionLadder
	}
	var lastErr error
	for _, level := range levels {
		if err := checkCancel(ctx); err != nil {
			return nil, err
		}
		body := plaintext
		meta.Compressed = level > 0
		if level > 0 {
			body, err = compressPayload(plaintext, level)
			if err != nil {
				return nil, err
			}
		}
		meta.Encrypted = box != nil
		if box != nil {
			body, err = box.Seal(body)
			if err != nil {
				return nil, err
			}
		}

		frameBytes, err := serializeFrame(magicFor(kind), meta, body)
		if err != nil {
			return nil, err
		}

		carrierOut, info, err := codec.Embed(ctx, carrier, frameBytes, redundancy)
		if err != nil {
			if errors.Is(err, ErrCapacityExceeded) {
				lastErr = err
				continue
			}
			return nil, err
		}

		out := &EmbedOutput{
			Carrier:         carrierOut,
			ActualFormat:    info.ActualFormat,
			CapacityUsedPct: capacityPct(info),
		}
		if info.FormatChanged {
			out.Notices = append(out.Notices, Notice{
				Code: NoticeFormatChanged,
				Message: fmt.Sprintf("output saved as %q to preserve embedded data",
					info.ActualFormat),
			})
		}
		return out, nil
	}
	return nil, lastErr
}

// existingPayloads recovers payloads already present in the carrier
// for layered merging. Every failure maps to "nothing there".
func (r *Router) existingPayloads(ctx context.Context, codec CarrierCodec, carrier Carrier, o *Options) []Payload {
	payloads, err := r.extract(ctx, codec, carrier, o)
	if err != nil {
		return nil
	}
	return payloads
}

// buildBody constructs the frame plaintext and metadata: the payload
// alone for a fresh carrier, or a layered container when secrets
// already exist.
func buildBody(existing []Payload, payload Payload) ([]byte, frameMeta, error) {
	if len(existing) == 0 {
		return payload.Bytes, frameMeta{
			Filename: payload.Filename,
			Size:     len(payload.Bytes),
			Type:     payload.MimeHint,
			Kind:     string(payload.Kind),
			Label:    payload.Label,
			Checksum: payload.Checksum,
		}, nil
	}

	entries := mergeLayered(existing, payload)
	blob, err := encodeLayered(entries)
	if err != nil {
		return nil, frameMeta{}, err
	}
	return blob, frameMeta{
		Filename: "layered_container.bin",
		Size:     len(blob),
		Type:     "application/x-veilforge-layered",
		Kind:     "layered",
		Checksum: checksumHex(blob),
	}, nil
}

// capacityPct computes the used share of the carrier's capacity.
func capacityPct(info *EmbedInfo) float64 {
	if info.AvailableBits == 0 {
		return 0
	}
	return float64(info.UsedBits) / float64(info.AvailableBits) * 100
}

// Extract recovers every payload hidden in the carrier: a single-
// element slice for plain containers, the full ordered entry list for
// layered ones. A wrong password and an empty carrier both produce
// ErrNotFound; callers cannot distinguish the two.
func (r *Router) Extract(ctx context.Context, carrier Carrier, opts ...Option) ([]Payload, error) {
	o := buildOptions(opts)
	start := time.Now()
	emitExtractStart(ctx, carrier.Kind())

	codec, err := r.codecFor(carrier)
	if err != nil {
		emitExtractComplete(ctx, carrier.Kind(), 0, time.Since(start), err)
		return nil, err
	}

	payloads, err := r.extract(ctx, codec, carrier, o)
	emitExtractComplete(ctx, carrier.Kind(), len(payloads), time.Since(start), err)
	return payloads, err
}

func (r *Router) extract(ctx context.Context, codec CarrierCodec, carrier Carrier, o *Options) ([]Payload, error) {
	kind := carrier.Kind()
	redundancy := o.redundancyFor(kind)

	f, err := codec.Extract(ctx, carrier, magicFor(kind), redundancy, o.ScanLimit)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, newExtractError(sentinelOf(err), kind, "locate", err)
	}

	body := f.body
	if f.meta.Encrypted {
		if o.Password == "" {
			// Fail closed: the caller learns nothing beyond "no
			// recoverable data".
			return nil, newExtractError(ErrNotFound, kind, "decrypt", nil)
		}
		box, err := NewSecretBox(o.Password)
		if err != nil {
			return nil, err
		}
		body, err = box.Open(body)
		if err != nil {
			// Wrong password and absent data must be observably
			// identical.
			return nil, newExtractError(ErrNotFound, kind, "decrypt", nil)
		}
	}

	if f.meta.Compressed {
		body, err = decompressPayload(body, f.meta.Size)
		if err != nil {
			return nil, newExtractError(ErrTruncatedBody, kind, "body", err)
		}
	}

	matches := checksumMatches(body, f.meta.Checksum)
	if !matches && o.StrictChecksum {
		return nil, newExtractError(ErrChecksumMismatch, kind, "checksum", nil)
	}

	if isLayered(body) {
		entries, err := decodeLayered(body)
		if err != nil {
			return nil, newExtractError(ErrTruncatedBody, kind, "body", err)
		}
		payloads := make([]Payload, 0, len(entries))
		for _, e := range entries {
			p, err := payloadFromEntry(e, o.StrictChecksum)
			if err != nil {
				return nil, newExtractError(ErrChecksumMismatch, kind, "checksum", err)
			}
			if !matches {
				p.IntegrityWarning = true
			}
			payloads = append(payloads, p)
		}
		return payloads, nil
	}

	return []Payload{{
		Filename:         f.meta.Filename,
		MimeHint:         f.meta.Type,
		Kind:             payloadKindOf(f.meta.Kind),
		Bytes:            body,
		Checksum:         checksumHex(body),
		Label:            f.meta.Label,
		IntegrityWarning: !matches,
	}}, nil
}

// sentinelOf maps an arbitrary extraction error onto its taxonomy
// sentinel for ExtractError wrapping.
func sentinelOf(err error) error {
	for _, sentinel := range []error{
		ErrNotFound,
		ErrMagicMismatch,
		ErrTruncatedMetadata,
		ErrTruncatedBody,
		ErrTruncatedBits,
		ErrUnsupportedCarrier,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return ErrNotFound
}

// payloadKindOf parses the metadata kind tag, defaulting unknown tags
// to binary.
func payloadKindOf(kind string) PayloadKind {
	switch PayloadKind(kind) {
	case PayloadText, PayloadFile, PayloadBinary:
		return PayloadKind(kind)
	default:
		return PayloadBinary
	}
}
