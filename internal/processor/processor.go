// Package processor is C7, the Event Processor Registry: an ordered list
// of decoders dispatched per log, grounded on the Rust original's
// services/proccesors/event_processor.rs (EventProcessorService) and the
// teacher's logsToTransfers switch in indexer/indexer.go.
package processor

import (
	"context"

	"github.com/chainwatch/evm-transfer-indexer/internal/logger"
)

// Request is the event-processor request derived per-log, spec.md §3.
type Request struct {
	ChainID     uint32
	BlockNumber uint64
	TxHash      string
	TxIndex     uint
	Address     string
	Data        string
	Topic0      string
	Topic1      *string
	Topic2      *string
	Topic3      *string
}

// Result is a decoder's verdict for one request.
type Result int

const (
	NotApplicable Result = iota
	Stored
)

// ErrorKind is ProcessorError's taxonomy, spec.md §4.7.
type ErrorKind int

const (
	ParseError ErrorKind = iota
	DecodeError
	ValidationError
	DatabaseError
)

func (k ErrorKind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case DecodeError:
		return "DecodeError"
	case ValidationError:
		return "ValidationError"
	case DatabaseError:
		return "DatabaseError"
	default:
		return "UnknownError"
	}
}

// ProcessorError is the error type every Decoder returns on failure.
type ProcessorError struct {
	Kind    ErrorKind
	Message string
	Data    string
}

func (e *ProcessorError) Error() string {
	if e.Data != "" {
		return e.Kind.String() + ": " + e.Message + ". Data: " + e.Data
	}
	return e.Kind.String() + ": " + e.Message
}

func newParseError(msg, data string) *ProcessorError {
	return &ProcessorError{Kind: ParseError, Message: msg, Data: data}
}

func newDecodeError(msg, data string) *ProcessorError {
	return &ProcessorError{Kind: DecodeError, Message: msg, Data: data}
}

func newValidationError(msg string) *ProcessorError {
	return &ProcessorError{Kind: ValidationError, Message: msg}
}

func newDatabaseError(err error) *ProcessorError {
	return &ProcessorError{Kind: DatabaseError, Message: err.Error()}
}

// Decoder matches a log by topic signature, decodes its ABI payload, and
// persists it. NotApplicable means the decoder does not recognize the
// event; Stored means it decoded and wrote a row.
type Decoder interface {
	StoreIfApply(ctx context.Context, req Request) (Result, error)
}

// Registry holds decoders in insertion order and dispatches every
// incoming log to all of them, matching spec.md §4.7's polymorphism note.
type Registry struct {
	decoders []Decoder
}

func NewRegistry(decoders ...Decoder) *Registry {
	return &Registry{decoders: decoders}
}

// Add appends a decoder, preserving insertion-order dispatch.
func (r *Registry) Add(d Decoder) {
	r.decoders = append(r.decoders, d)
}

// Dispatch invokes every decoder's StoreIfApply in order. Errors are
// logged and do not stop dispatch to subsequent decoders on the same
// event (spec.md §4.7).
func (r *Registry) Dispatch(ctx context.Context, req Request) {
	for _, d := range r.decoders {
		result, err := d.StoreIfApply(ctx, req)
		if err != nil {
			logger.For(ctx).WithError(err).WithField("topic0", req.Topic0).Error("event processor failed")
			continue
		}
		if result == Stored {
			logger.For(ctx).WithFields(map[string]interface{}{
				"topic0":      req.Topic0,
				"address":     req.Address,
				"blockNumber": req.BlockNumber,
			}).Debug("stored transfer event")
		}
	}
}
