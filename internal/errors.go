package internal

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrNotFound            = errors.New("not found")
	ErrCorruptData         = errors.New("corrupt data")
	ErrDimensionMismatch   = errors.New("dimension mismatch")
	ErrPipelineExecution   = errors.New("pipeline execution failed")
)

// Pipeline stages reported by PipelineError.
const (
	StageRetrieve = "retrieve"
	StageAssemble = "assemble"
	StageGenerate = "generate"
)

// PipelineError is returned by Pipeline.Answer when any stage fails.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func (e *PipelineError) Is(target error) bool {
	return target == ErrPipelineExecution
}

// AssemblyError is returned by CreatePipeline when a component cannot be
// initialised.
type AssemblyError struct {
	Component string
	Err       error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble pipeline: %s: %v", e.Component, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func dimensionMismatch(expected, got int) error {
	return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, expected, got)
}
