package config

import (
	"strings"
	"testing"
)

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	lookup := mapLookup(map[string]string{"PRESENT": "ok"})

	_, err := ExpandEnvStrict("a=${PRESENT} b=${MISSING} c=${ALSO_MISSING}", lookup)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "ALSO_MISSING, MISSING") {
		t.Fatalf("expected sorted missing names in error, got: %v", err)
	}
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	out, err := ExpandEnvStrict("$$${X}", mapLookup(map[string]string{"X": "y"}))
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "$y" {
		t.Fatalf("ExpandEnvStrict() = %q, want %q", out, "$y")
	}
}

func TestExpandEnvStrict_ProcessEnv(t *testing.T) {
	t.Setenv("HAGEL_EXPAND_TEST", "v")
	out, err := ExpandEnvStrict("x=$HAGEL_EXPAND_TEST", nil)
	if err != nil || out != "x=v" {
		t.Fatalf("ExpandEnvStrict() = %q, %v", out, err)
	}
}
