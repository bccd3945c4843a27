package coreerrors

import (
	"errors"
	"testing"
)

func TestSentinelMatch(t *testing.T) {
	err := New(KindPathNotFound, "no such dir-1234567")
	if !errors.Is(err, PathNotFound) {
		t.Fatalf("errors.Is(err, PathNotFound) = false")
	}
	if errors.Is(err, InvalidInput) {
		t.Fatalf("errors.Is(err, InvalidInput) = true, want false")
	}
}

func TestWithFieldPreservesKind(t *testing.T) {
	err := New(KindPluginInstallInProgress, "install in progress").WithField("plugin_id", "claude-code")
	if !errors.Is(err, PluginInstallInProgress) {
		t.Fatalf("errors.Is after WithField = false")
	}
	if got := err.Field("plugin_id"); got != "claude-code" {
		t.Fatalf("Field(plugin_id) = %q, want claude-code", got)
	}
}

func TestKindOf(t *testing.T) {
	err := New(KindOperationNotFound, "no-such-op")
	kind, ok := KindOf(err)
	if !ok || kind != KindOperationNotFound {
		t.Fatalf("KindOf = (%v, %v), want (%v, true)", kind, ok, KindOperationNotFound)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Fatalf("KindOf(plain error) = true, want false")
	}
}

func TestErrorMessage(t *testing.T) {
	err := New(KindInvalidInput, "path escapes workspace root")
	want := "InvalidInput: path escapes workspace root"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
