package util

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every fatal pipeline failure: input
// (malformed BLIF/PCF/chipdb, bad or conflicting constraints),
// structural (a netlist shape no legal configuration can express),
// capacity (a cell pool or chain column ran out), and the two
// algorithmic failures (an SB_CARRY cycle, routing that never
// converged). Callers match with errors.Is.
var (
	ErrInputMalformed   = errors.New("malformed input")
	ErrStructural       = errors.New("structural constraint violated")
	ErrCapacityExceeded = errors.New("device capacity exceeded")
	ErrCarryChainLoop   = errors.New("carry chain loop")
	ErrRouteFailed      = errors.New("failed to route")
)

// PipelineError is a fatal error raised by a pipeline stage, carrying
// the taxonomy sentinel it classifies under. Every PipelineError
// terminates the run: cmd/icepnr prints its message after
// "fatal error:" and exits non-zero. There is no intra-stage recovery.
type PipelineError struct {
	Class error
	Msg   string
}

func (e *PipelineError) Error() string { return e.Msg }

func (e *PipelineError) Unwrap() error { return e.Class }

// InputErrorf builds an input-class PipelineError.
func InputErrorf(format string, args ...interface{}) *PipelineError {
	return &PipelineError{Class: ErrInputMalformed, Msg: fmt.Sprintf(format, args...)}
}

// StructuralErrorf builds a structural-class PipelineError.
func StructuralErrorf(format string, args ...interface{}) *PipelineError {
	return &PipelineError{Class: ErrStructural, Msg: fmt.Sprintf(format, args...)}
}

// CapacityErrorf builds a capacity-class PipelineError.
func CapacityErrorf(format string, args ...interface{}) *PipelineError {
	return &PipelineError{Class: ErrCapacityExceeded, Msg: fmt.Sprintf(format, args...)}
}

// RouteErrorf builds a PipelineError for a routing run that could not
// drive the number of shared chip-nets to zero.
func RouteErrorf(format string, args ...interface{}) *PipelineError {
	return &PipelineError{Class: ErrRouteFailed, Msg: fmt.Sprintf(format, args...)}
}

// CarryChainLoopError reports an SB_CARRY whose CI chain never reaches
// a head, so carry packing can never consume it.
func CarryChainLoopError() *PipelineError {
	return &PipelineError{Class: ErrCarryChainLoop, Msg: "carry chain loop"}
}

// Fatalf builds a PipelineError under an explicit class, for stages
// whose failures span more than one class.
func Fatalf(class error, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Class: class, Msg: fmt.Sprintf(format, args...)}
}
