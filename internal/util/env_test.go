package util

import (
	"testing"
	"time"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("HOLOCRON_INT", "12")
	t.Setenv("HOLOCRON_BAD_INT", "twelve")
	t.Setenv("HOLOCRON_FLOAT", "2.5")
	t.Setenv("HOLOCRON_SECS", "7")
	t.Setenv("HOLOCRON_BOOL", "true")
	t.Setenv("HOLOCRON_EMPTY", "")

	if got := GetEnvInt("HOLOCRON_INT", 3); got != 12 {
		t.Fatalf("GetEnvInt: got %d, want 12", got)
	}
	if got := GetEnvInt("HOLOCRON_BAD_INT", 3); got != 3 {
		t.Fatalf("GetEnvInt fallback: got %d, want 3", got)
	}
	if got := GetEnvInt("HOLOCRON_MISSING", 5); got != 5 {
		t.Fatalf("GetEnvInt missing: got %d, want 5", got)
	}
	if got := GetEnvFloat("HOLOCRON_FLOAT", 0); got != 2.5 {
		t.Fatalf("GetEnvFloat: got %v, want 2.5", got)
	}
	if got := GetEnvSeconds("HOLOCRON_SECS", time.Second); got != 7*time.Second {
		t.Fatalf("GetEnvSeconds: got %v, want 7s", got)
	}
	if got := GetEnvBool("HOLOCRON_BOOL", false); !got {
		t.Fatal("GetEnvBool: expected true")
	}
	if got := GetEnvString("HOLOCRON_EMPTY", "fallback"); got != "fallback" {
		t.Fatalf("GetEnvString empty: got %q", got)
	}
	if got := GetEnv("HOLOCRON_MISSING"); got != "" {
		t.Fatalf("GetEnv missing: got %q", got)
	}
}
