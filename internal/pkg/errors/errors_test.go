package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestEngineError_MessageIncludesInternal(t *testing.T) {
	inner := errors.New("connection refused")
	err := Collection("azure", inner, "inventory listing failed")

	if got := err.Error(); got != "inventory listing failed: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Error("wrapped error lost through Unwrap")
	}
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"configuration", Configuration("bad config"), IsConfiguration},
		{"cancellation", Cancelled(context.Canceled), IsCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("predicate rejected its own error %v", tt.err)
			}
			if tt.check(errors.New("plain")) {
				t.Error("predicate accepted a plain error")
			}
		})
	}
}

func TestConstructorCodes(t *testing.T) {
	if err := Collection("azure", nil, "failed"); err.Code != CodeCollection {
		t.Errorf("Collection() code = %q", err.Code)
	}
	if err := Matcher("network", nil, "failed"); err.Code != CodeMatcher {
		t.Errorf("Matcher() code = %q", err.Code)
	}
}

func TestCodePredicates_SeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("engine: %w", Configuration("bad config"))
	if !IsConfiguration(err) {
		t.Error("IsConfiguration() lost the code through fmt wrapping")
	}
	if IsCancelled(err) {
		t.Error("IsCancelled() matched a configuration error")
	}
}

func TestConfigurationf(t *testing.T) {
	err := Configurationf("field %q missing", "state_path")
	if err.Code != CodeConfiguration || err.Error() != `field "state_path" missing` {
		t.Errorf("Configurationf() = %+v", err)
	}
}
