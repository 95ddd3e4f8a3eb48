package fingerprint

import (
	"errors"
	"strings"
	"testing"
)

func TestDefault_MapOrderIrrelevant(t *testing.T) {
	var fp Default

	inputs := []map[string]any{
		{"b": 2, "a": 1, "c": map[string]any{"y": 1, "x": 2}},
		{"a": 1, "c": map[string]any{"x": 2, "y": 1}, "b": 2},
		{"c": map[string]any{"y": 1, "x": 2}, "b": 2, "a": 1},
	}

	var first Fingerprint
	for i, in := range inputs {
		got, err := fp.Fingerprint(in)
		if err != nil {
			t.Fatalf("Fingerprint(%d) error = %v", i, err)
		}
		if i == 0 {
			first = got
			continue
		}
		if got != first {
			t.Errorf("fingerprint %d = %s, want %s", i, got, first)
		}
	}
}

func TestDefault_DistinguishesDescriptors(t *testing.T) {
	var fp Default

	tests := []struct {
		name string
		a, b any
	}{
		{name: "slice order", a: map[string]any{"dims": []any{1, 2}}, b: map[string]any{"dims": []any{2, 1}}},
		{name: "value", a: map[string]any{"limit": 10}, b: map[string]any{"limit": 11}},
		{name: "type", a: "10", b: 10},
		{name: "nil vs empty", a: nil, b: map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := fp.Fingerprint(tt.a)
			if err != nil {
				t.Fatalf("Fingerprint(a) error = %v", err)
			}
			b, err := fp.Fingerprint(tt.b)
			if err != nil {
				t.Fatalf("Fingerprint(b) error = %v", err)
			}
			if a == b {
				t.Errorf("fingerprints should differ: %s", a)
			}
		})
	}
}

func TestDefault_Format(t *testing.T) {
	got, err := Default{}.Fingerprint(struct {
		Cube    string
		Filters []string
	}{Cube: "sales", Filters: []string{"region=eu"}})
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}

	s := got.String()
	if !strings.HasPrefix(s, Prefix) {
		t.Errorf("fingerprint %q missing prefix %q", s, Prefix)
	}
	if len(s) != len(Prefix)+16 {
		t.Errorf("fingerprint %q has length %d, want %d", s, len(s), len(Prefix)+16)
	}
}

func TestDefault_Unencodable(t *testing.T) {
	_, err := Default{}.Fingerprint(map[string]any{"ch": make(chan int)})
	if !errors.Is(err, ErrUnencodable) {
		t.Fatalf("error = %v, want ErrUnencodable", err)
	}
}

func TestFunc(t *testing.T) {
	f := Func(func(d any) (Fingerprint, error) {
		return Fingerprint("custom:" + d.(string)), nil
	})

	got, err := f.Fingerprint("q1")
	if err != nil || got != "custom:q1" {
		t.Fatalf("Fingerprint() = %q, %v", got, err)
	}
}

func BenchmarkDefault(b *testing.B) {
	var fp Default
	in := map[string]any{
		"cube":    "sales",
		"dims":    []any{"region", "month"},
		"filters": map[string]any{"year": 2024, "country": "DE"},
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := fp.Fingerprint(in); err != nil {
			b.Fatal(err)
		}
	}
}
