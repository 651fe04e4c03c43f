package migrate

import (
	"strings"
	"testing"
)

func TestRun_RequiresDSN(t *testing.T) {
	if err := Run("", "up"); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestRun_RejectsUnknownDirection(t *testing.T) {
	err := Run("postgres://localhost/codgoo", "sideways")
	if err == nil {
		t.Fatal("expected error for unknown direction")
	}
	if !strings.Contains(err.Error(), "direction") {
		t.Errorf("err = %v, want direction complaint", err)
	}
}
