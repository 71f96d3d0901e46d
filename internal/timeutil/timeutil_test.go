package timeutil

import (
	"testing"
	"time"
)

func TestDisplayUsesAlmatyOffset(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if got := Display(at); got != "01.03.2026 15:00" {
		t.Fatalf("expected 01.03.2026 15:00, got %s", got)
	}
}
