package source

import (
	"context"
	"errors"
	"testing"

	"NarrativeRadar/internal/domain/models"
)

type stubAdapter struct{ name string }

func (s *stubAdapter) Name() string { return s.name }
func (s *stubAdapter) ParentsFor(context.Context, string, []string, Options) []models.ParentCandidate {
	return nil
}

func TestRegisterEmptyNameFails(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("  ", func() Adapter { return &stubAdapter{} }); !errors.Is(err, ErrEmptyAdapterName) {
		t.Fatalf("expected ErrEmptyAdapterName, got %v", err)
	}
}

func TestMakeUnknownNameSurfaces(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Make("nope"); !errors.Is(err, ErrUnknownAdapter) {
		t.Fatalf("expected ErrUnknownAdapter, got %v", err)
	}
}

func TestMakeNormalizesName(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("Test", func() Adapter { return &stubAdapter{name: "test"} }); err != nil {
		t.Fatalf("register: %v", err)
	}
	a, err := reg.Make("  TEST ")
	if err != nil {
		t.Fatalf("make: %v", err)
	}
	if a.Name() != "test" {
		t.Fatalf("got %q", a.Name())
	}
}

func TestNamesSorted(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []string{"dev", "blend", "test", "coingecko"} {
		if err := reg.Register(n, func() Adapter { return &stubAdapter{} }); err != nil {
			t.Fatalf("register %s: %v", n, err)
		}
	}
	names := reg.Names()
	want := []string{"blend", "coingecko", "dev", "test"}
	if len(names) != len(want) {
		t.Fatalf("got %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v want %v", names, want)
		}
	}
}

func TestSourceFacadePropagatesConfigError(t *testing.T) {
	reg := NewRegistry()
	if _, err := New(reg, "missing"); !errors.Is(err, ErrUnknownAdapter) {
		t.Fatalf("facade must surface config errors, got %v", err)
	}
}
