package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
)

// Mutating use cases run as a five-step operation:
// Validate, Perform, Verify, Archive, Respond.
// Nothing is persisted before Verify has accepted the performed result, so a
// rejected payload never reaches the store or the snapshot slot.

// ExecutionStep names a step of an Operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records the step an operation failed in.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func stepError(step ExecutionStep, message string, cause error) error {
	return &ExecutionError{Step: step, Message: message, Cause: cause}
}

// Executor runs operations and logs each step.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor. A nil logger falls back to slog.Default().
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation holds the step functions of one use case. Any step may be nil.
//
// I is the input, P what Perform produced, V what Verify accepted and O the
// caller-facing result.
type Operation[I, P, V, O any] struct {
	Name string

	// Validate checks the input before anything else runs.
	Validate func(ctx context.Context, input I) error

	// Perform does the work without touching persistent state.
	Perform func(ctx context.Context, input I) (P, error)

	// Verify inspects the performed result independently. When nil, the
	// performed result is accepted as is if P and V are the same type.
	Verify func(ctx context.Context, input I, performed P) (V, error)

	// Archive persists the verified state.
	Archive func(ctx context.Context, input I, verified V) error

	// Respond shapes the result for the caller.
	Respond func(ctx context.Context, input I, verified V) (O, error)
}

type run[I, P, V, O any] struct {
	logger *slog.Logger
	op     Operation[I, P, V, O]
	input  I
}

func (r *run[I, P, V, O]) validate(ctx context.Context) error {
	if r.op.Validate == nil {
		return nil
	}

	if err := r.op.Validate(ctx, r.input); err != nil {
		r.logger.WarnContext(ctx, "validation failed", slog.Any("error", err))
		return stepError(StepValidate, "input validation failed", err)
	}

	r.logger.DebugContext(ctx, "validation passed")

	return nil
}

func (r *run[I, P, V, O]) perform(ctx context.Context) (P, error) {
	var zero P

	if r.op.Perform == nil {
		return zero, nil
	}

	performed, err := r.op.Perform(ctx, r.input)
	if err != nil {
		r.logger.WarnContext(ctx, "perform failed", slog.Any("error", err))
		return zero, stepError(StepPerform, "operation failed", err)
	}

	r.logger.DebugContext(ctx, "operation performed")

	return performed, nil
}

func (r *run[I, P, V, O]) verify(ctx context.Context, performed P) (V, error) {
	var zero V

	if r.op.Verify == nil {
		if v, ok := any(performed).(V); ok {
			return v, nil
		}

		return zero, nil
	}

	verified, err := r.op.Verify(ctx, r.input, performed)
	if err != nil {
		r.logger.WarnContext(ctx, "verification failed", slog.Any("error", err))
		return zero, stepError(StepVerify, "verification failed", err)
	}

	r.logger.DebugContext(ctx, "result verified")

	return verified, nil
}

func (r *run[I, P, V, O]) archive(ctx context.Context, verified V) error {
	if r.op.Archive == nil {
		return nil
	}

	if err := r.op.Archive(ctx, r.input, verified); err != nil {
		r.logger.ErrorContext(ctx, "archive failed", slog.Any("error", err))
		return stepError(StepArchive, "state persistence failed", err)
	}

	r.logger.DebugContext(ctx, "state archived")

	return nil
}

func (r *run[I, P, V, O]) respond(ctx context.Context, verified V) (O, error) {
	var zero O

	if r.op.Respond == nil {
		return zero, nil
	}

	result, err := r.op.Respond(ctx, r.input, verified)
	if err != nil {
		r.logger.WarnContext(ctx, "respond failed", slog.Any("error", err))
		return zero, stepError(StepRespond, "response failed", err)
	}

	return result, nil
}

// Execute runs op against input, stopping at the first failing step.
// Failures are returned as *ExecutionError wrapping the step's error.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var zero O

	r := &run[I, P, V, O]{
		logger: logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name)),
		op:     op,
		input:  input,
	}
	start := time.Now()

	if err := r.validate(ctx); err != nil {
		return zero, err
	}

	performed, err := r.perform(ctx)
	if err != nil {
		return zero, err
	}

	verified, err := r.verify(ctx, performed)
	if err != nil {
		return zero, err
	}

	if err := r.archive(ctx, verified); err != nil {
		return zero, err
	}

	result, err := r.respond(ctx, verified)
	if err != nil {
		return zero, err
	}

	r.logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// IsExecutionError reports whether err came out of Execute.
func IsExecutionError(err error) bool {
	var execErr *ExecutionError
	return errors.As(err, &execErr)
}

// GetExecutionStep extracts the failing step from an execution error.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
