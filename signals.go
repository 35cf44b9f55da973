package stego

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for codec events.
var (
	SignalRouterCreated   = capitan.NewSignal("stego.router.created", "Router instantiated")
	SignalEmbedStart      = capitan.NewSignal("stego.embed.start", "Embed operation beginning")
	SignalEmbedComplete   = capitan.NewSignal("stego.embed.complete", "Embed operation finished")
	SignalExtractStart    = capitan.NewSignal("stego.extract.start", "Extract operation beginning")
	SignalExtractComplete = capitan.NewSignal("stego.extract.complete", "Extract operation finished")
)

// Keys for typed event data.
var (
	KeyCarrierKind  = capitan.NewStringKey("carrier_kind")
	KeyActualFormat = capitan.NewStringKey("actual_format")
	KeyPayloadSize  = capitan.NewIntKey("payload_size")
	KeyPayloadCount = capitan.NewIntKey("payload_count")
	KeyCapacityPct  = capitan.NewIntKey("capacity_used_pct")
	KeyEncrypted    = capitan.NewIntKey("encrypted")
	KeyDuration     = capitan.NewDurationKey("duration")
	KeyError        = capitan.NewErrorKey("error")
)

// emitRouterCreated emits an event when a router is constructed.
func emitRouterCreated(ctx context.Context, codecCount int) {
	capitan.Emit(ctx, SignalRouterCreated,
		KeyPayloadCount.Field(codecCount),
	)
}

// emitEmbedStart emits an event when an embed begins.
func emitEmbedStart(ctx context.Context, kind CarrierKind, payloadSize int) {
	capitan.Emit(ctx, SignalEmbedStart,
		KeyCarrierKind.Field(string(kind)),
		KeyPayloadSize.Field(payloadSize),
	)
}

// emitEmbedComplete emits an event when an embed finishes.
func emitEmbedComplete(ctx context.Context, kind CarrierKind, out *EmbedOutput, encrypted bool, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyCarrierKind.Field(string(kind)),
		KeyDuration.Field(duration),
	}
	if encrypted {
		fields = append(fields, KeyEncrypted.Field(1))
	} else {
		fields = append(fields, KeyEncrypted.Field(0))
	}
	if out != nil {
		fields = append(fields,
			KeyActualFormat.Field(out.ActualFormat),
			KeyCapacityPct.Field(int(out.CapacityUsedPct)),
		)
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEmbedComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEmbedComplete, fields...)
	}
}

// emitExtractStart emits an event when an extract begins.
func emitExtractStart(ctx context.Context, kind CarrierKind) {
	capitan.Emit(ctx, SignalExtractStart,
		KeyCarrierKind.Field(string(kind)),
	)
}

// emitExtractComplete emits an event when an extract finishes. The
// payload count and error fields never reveal payload content.
func emitExtractComplete(ctx context.Context, kind CarrierKind, payloadCount int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyCarrierKind.Field(string(kind)),
		KeyPayloadCount.Field(payloadCount),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalExtractComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalExtractComplete, fields...)
	}
}
