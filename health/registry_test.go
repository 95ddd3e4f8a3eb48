package health

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/storagecache/region"
	"github.com/jonwraymond/storagecache/registry"
)

func byteTemplate(maxBytes int64) region.Template {
	tmpl := region.DefaultTemplate()
	tmpl.MaxBytes = maxBytes
	return tmpl
}

func TestRegistryChecker_Healthy(t *testing.T) {
	reg := registry.New()
	defer reg.Close()

	r, err := reg.RegionFor(context.Background(), "cube-a")
	if err != nil {
		t.Fatalf("RegionFor() error = %v", err)
	}
	_ = r.Put("k", "v")

	checker := NewRegistryChecker(reg)
	result := checker.Check(context.Background())

	if checker.Name() != RegistryCheckerName {
		t.Errorf("Name() = %q", checker.Name())
	}
	if result.Status != StatusHealthy {
		t.Fatalf("Status = %v (%s), want healthy", result.Status, result.Message)
	}
	details, ok := result.Details["cube-a"].(map[string]any)
	if !ok {
		t.Fatalf("missing details for cube-a: %v", result.Details)
	}
	if details["entries"] != 1 {
		t.Errorf("entries = %v, want 1", details["entries"])
	}
}

func TestRegistryChecker_DegradedNearCapacity(t *testing.T) {
	reg := registry.New(registry.WithTemplate(byteTemplate(100)))
	defer reg.Close()
	ctx := context.Background()

	full, _ := reg.RegionFor(ctx, "cube-full")
	_ = full.Put("k", strings.Repeat("x", 95))
	light, _ := reg.RegionFor(ctx, "cube-light")
	_ = light.Put("k", "x")

	result := NewRegistryChecker(reg).Check(ctx)
	if result.Status != StatusDegraded {
		t.Fatalf("Status = %v, want degraded", result.Status)
	}
	if !strings.Contains(result.Message, "cube-full") || strings.Contains(result.Message, "cube-light") {
		t.Errorf("Message = %q", result.Message)
	}

	relaxed := NewRegistryChecker(reg, WithWarningRatio(1)).Check(ctx)
	if relaxed.Status != StatusHealthy {
		t.Errorf("with ratio 1 Status = %v, want healthy", relaxed.Status)
	}
}

func TestRegistryChecker_Unhealthy(t *testing.T) {
	bad := registry.New(registry.WithTemplate(region.Template{}))
	defer bad.Close()

	result := NewRegistryChecker(bad).Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Fatalf("Status = %v, want unhealthy", result.Status)
	}
	if !errors.Is(result.Error, ErrCheckFailed) || !errors.Is(result.Error, registry.ErrConfiguration) {
		t.Errorf("Error = %v", result.Error)
	}

	closed := registry.New()
	_ = closed.Close()
	if got := NewRegistryChecker(closed).Check(context.Background()); !errors.Is(got.Error, registry.ErrClosed) {
		t.Errorf("closed registry Error = %v", got.Error)
	}
}
