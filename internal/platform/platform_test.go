package platform

import (
	"runtime"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestSupportsNamedEvents(t *testing.T) {
	if runtime.GOOS == "windows" {
		if !SupportsNamedEvents {
			t.Error("Windows should support named events")
		}
	} else if SupportsNamedEvents {
		t.Errorf("%s/%s should not support named events", runtime.GOOS, runtime.GOARCH)
	}
}

func TestObjectName(t *testing.T) {
	tests := []struct {
		ns   Namespace
		name string
		want string
	}{
		{NamespaceDefault, "evt-1", "evt-1"},
		{NamespaceGlobal, "evt-1", `Global\evt-1`},
		{NamespaceLocal, "some-random-event", `Local\some-random-event`},
		{NamespaceDefault, "ünïcödé", "ünïcödé"},
		{NamespaceDefault, `Global\evt-1`, `Global\evt-1`},
		{NamespaceDefault, `Session\1\evt-1`, `Session\1\evt-1`},
		{NamespaceLocal, `a\b`, `Local\a\b`},
	}

	for _, tt := range tests {
		got, err := ObjectName(tt.ns, tt.name)
		if err != nil {
			t.Errorf("ObjectName(%q, %q) failed: %v", tt.ns, tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ObjectName(%q, %q) = %q, want %q", tt.ns, tt.name, got, tt.want)
		}
	}
}

func TestObjectNameRejects(t *testing.T) {
	tests := []struct {
		desc string
		ns   Namespace
		name string
	}{
		{"empty", NamespaceDefault, ""},
		{"nul", NamespaceDefault, "a\x00b"},
		{"too long", NamespaceDefault, strings.Repeat("x", MaxNameLength+1)},
		{"too long with prefix", NamespaceGlobal, strings.Repeat("x", MaxNameLength-3)},
		{"bad namespace", Namespace("Other\\"), "evt"},
	}

	for _, tt := range tests {
		if _, err := ObjectName(tt.ns, tt.name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("%s: expected ErrInvalidName, got %v", tt.desc, err)
		}
	}
}

func TestObjectNameLengthCountsUTF16Units(t *testing.T) {
	// U+1F600 takes two UTF-16 units.
	name := strings.Repeat("\U0001F600", MaxNameLength/2)
	if _, err := ObjectName(NamespaceDefault, name); err != nil {
		t.Errorf("name at the limit rejected: %v", err)
	}
	if _, err := ObjectName(NamespaceDefault, name+"x"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("name over the limit accepted: %v", err)
	}
}

func TestParseNamespace(t *testing.T) {
	tests := map[string]Namespace{
		"":        NamespaceDefault,
		"default": NamespaceDefault,
		"Global":  NamespaceGlobal,
		"local":   NamespaceLocal,
	}
	for in, want := range tests {
		got, err := ParseNamespace(in)
		if err != nil || got != want {
			t.Errorf("ParseNamespace(%q) = (%q, %v), want %q", in, got, err, want)
		}
	}
	if _, err := ParseNamespace("session"); err == nil {
		t.Error("ParseNamespace accepted an unknown keyword")
	}
}
