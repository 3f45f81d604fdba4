package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ws-tools/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const genericFailure = "tool execution failed"

// Dispatcher routes named invocations to registry tools with a fixed
// execution context. It holds no per-call state.
type Dispatcher struct {
	registry *Registry
	meta     Meta
	logger   *zap.Logger
}

// NewDispatcher constructs a Dispatcher. A nil logger disables logging.
func NewDispatcher(registry *Registry, meta Meta, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{registry: registry, meta: meta, logger: logger}
}

// Registry returns the underlying registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch invokes the named tool and wraps the outcome in an Envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, input map[string]any) Envelope {
	callID := uuid.NewString()
	logger := d.logger.With(zap.String("tool", name), zap.String("call_id", callID))

	tool, ok := d.registry.Get(name)
	if !ok {
		err := NotFoundf("unknown tool: %s", name)
		logger.Warn("unknown tool")
		return Failure(err)
	}
	if input == nil {
		input = map[string]any{}
	}
	logger.Debug("tool call started", zap.String("input", previewInput(input)))

	start := time.Now()
	res, err := d.execute(ctx, tool, input)
	duration := time.Since(start)
	if err != nil {
		logger.Warn("tool call failed",
			zap.String("kind", string(KindOf(err))),
			zap.Duration("duration", duration),
			zap.Error(err),
			zap.NamedError("cause", errors.Unwrap(err)),
		)
		return Failure(err)
	}
	logger.Info("tool call finished", zap.Duration("duration", duration), zap.Bool("truncated", res.Truncated))
	return Success(res.Payload)
}

func (d *Dispatcher) execute(ctx context.Context, tool Tool, input map[string]any) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = &Error{Kind: KindInternal, Message: genericFailure, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	res, err = tool.Execute(ctx, input, d.meta)
	if err == nil {
		return res, nil
	}
	var toolErr *Error
	if errors.As(err, &toolErr) {
		return Result{}, toolErr
	}
	return Result{}, &Error{Kind: KindInternal, Message: genericFailure, Err: err}
}

func previewInput(input map[string]any) string {
	raw, err := json.Marshal(util.RedactFields(input))
	if err != nil {
		return ""
	}
	return util.Preview(util.RedactSecrets(string(raw)), 1, 512)
}
