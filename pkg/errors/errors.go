// Package errors provides structured error and warning handling for sdmgo.
// Error types carry enough context to be logged as structured fields, and
// warnings flow through a process-wide handler so callers can decide whether
// degenerate-but-recoverable conditions are worth surfacing.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("sdmgo-warning: %v\n", w)
	}
	// zerolog sink, set lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the library-wide warning handler. Install a
// no-op handler to silence warnings entirely.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc routes warnings to a zerolog-backed sink. When set it
// takes precedence over the plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning through the configured sink.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// UndefinedMetricWarning signals that a metric component could not be
// computed and a fallback value was substituted, e.g. sensitivity on a fold
// with no observed presences.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %g due to %s", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning creates a new UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ConvergenceWarning signals that an iterative fit stopped at its iteration
// cap without meeting the tolerance.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a new ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// InvalidFoldCountError reports a fold count outside [2, rows].
type InvalidFoldCountError struct {
	K    int
	Rows int
}

func (e *InvalidFoldCountError) Error() string {
	return fmt.Sprintf("sdmgo: fold count %d out of range [2, %d]", e.K, e.Rows)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *InvalidFoldCountError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("k", e.K).
		Int("rows", e.Rows).
		Str("type", "InvalidFoldCountError")
}

// NewInvalidFoldCountError creates an InvalidFoldCountError with a stack trace.
func NewInvalidFoldCountError(k, rows int) error {
	err := &InvalidFoldCountError{K: k, Rows: rows}
	return errors.WithStack(err)
}

// NoPositiveObservationsError reports an all-absence label vector, for which
// AUC and TSS are undefined.
type NoPositiveObservationsError struct {
	Op string
	N  int
}

func (e *NoPositiveObservationsError) Error() string {
	return fmt.Sprintf("sdmgo: %s: no positive observations among %d rows", e.Op, e.N)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *NoPositiveObservationsError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("rows", e.N).
		Str("type", "NoPositiveObservationsError")
}

// NewNoPositiveObservationsError creates a NoPositiveObservationsError with a
// stack trace.
func NewNoPositiveObservationsError(op string, n int) error {
	err := &NoPositiveObservationsError{Op: op, N: n}
	return errors.WithStack(err)
}

// ModelFittingError reports a failure of an external trainer, e.g. degenerate
// or rank-deficient training data.
type ModelFittingError struct {
	Family string
	Op     string
	Err    error
}

func (e *ModelFittingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sdmgo: %s: %s fit failed: %v", e.Op, e.Family, e.Err)
	}
	return fmt.Sprintf("sdmgo: %s: %s fit failed", e.Op, e.Family)
}

func (e *ModelFittingError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *ModelFittingError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("family", e.Family).
		Str("operation", e.Op).
		Str("type", "ModelFittingError")
}

// NewModelFittingError creates a ModelFittingError with a stack trace.
func NewModelFittingError(family, op string, err error) error {
	fitErr := &ModelFittingError{Family: family, Op: op, Err: err}
	return errors.WithStack(fitErr)
}

// CurveFittingError reports that a growth-curve fit failed to converge.
// Extent selection treats this as recoverable and falls back to the extent
// with the maximum observed AUC.
type CurveFittingError struct {
	Curve string
	Err   error
}

func (e *CurveFittingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sdmgo: %s curve fit failed: %v", e.Curve, e.Err)
	}
	return fmt.Sprintf("sdmgo: %s curve fit failed", e.Curve)
}

func (e *CurveFittingError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *CurveFittingError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("curve", e.Curve).
		Str("type", "CurveFittingError")
}

// NewCurveFittingError creates a CurveFittingError with a stack trace.
func NewCurveFittingError(curve string, err error) error {
	curveErr := &CurveFittingError{Curve: curve, Err: err}
	return errors.WithStack(curveErr)
}

// ValueError reports an argument whose value is unusable for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("sdmgo: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// DimensionError reports a shape mismatch between paired inputs.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("sdmgo: %s: dimension mismatch. Expected %d, got %d", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As reports whether err can be assigned to target's type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error values
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an empty table or vector is supplied.
	ErrEmptyData = New("empty data")

	// ErrUnknownFamily is returned when no trainer is registered for the
	// requested algorithm family.
	ErrUnknownFamily = New("unknown algorithm family")
)
