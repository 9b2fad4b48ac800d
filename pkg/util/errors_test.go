package util

import (
	"errors"
	"strings"
	"testing"
)

func TestPipelineErrorMessage(t *testing.T) {
	err := CapacityErrorf("failed to place: placed %d LCs of %d / %d", 7, 9, 8)

	msg := err.Error()
	if !strings.Contains(msg, "failed to place") {
		t.Errorf("message should carry the stage text: %s", msg)
	}
	if !strings.Contains(msg, "7") || !strings.Contains(msg, "9") {
		t.Errorf("message should carry the formatted counts: %s", msg)
	}
}

func TestPipelineErrorClasses(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"input", InputErrorf("duplicate pin constraints for pin '%s'", "A1"), ErrInputMalformed},
		{"structural", StructuralErrorf("physical constraint required for GB_IO"), ErrStructural},
		{"capacity", CapacityErrorf("failed to place: placed 0 PLLs of 1 / 1"), ErrCapacityExceeded},
		{"route", RouteErrorf("failed to route"), ErrRouteFailed},
		{"carry loop", CarryChainLoopError(), ErrCarryChainLoop},
		{"explicit class", Fatalf(ErrStructural, "LVDS port `%s' not in bank 3", "clk"), ErrStructural},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%v should classify under %v", tt.err, tt.sentinel)
			}
		})
	}
}

func TestSentinelErrorsDistinct(t *testing.T) {
	sentinels := []error{
		ErrInputMalformed,
		ErrStructural,
		ErrCapacityExceeded,
		ErrCarryChainLoop,
		ErrRouteFailed,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("sentinel errors should be distinct: %v == %v", err1, err2)
			}
		}
	}
}

func TestPipelineErrorDoesNotCrossClasses(t *testing.T) {
	err := CapacityErrorf("out of LCs")
	if errors.Is(err, ErrRouteFailed) {
		t.Error("a capacity error must not classify as a routing failure")
	}
}
