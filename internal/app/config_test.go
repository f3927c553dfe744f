package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring"
)

func TestLoadTutoringOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "governor.yaml")
	doc := `
analyze_concurrency: 9
enrich: true
risk:
  delegation_hit_threshold: 5
  speed_max_elapsed: 8s
  delegation_phrases: ["just give me the code"]
path:
  trend_threshold: 0.3
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	base := tutoring.DefaultConfig()
	got, err := LoadTutoringOverlay(path, base)
	if err != nil {
		t.Fatalf("overlay: %v", err)
	}
	if got.AnalyzeConcurrency != 9 || !got.Enrich {
		t.Fatalf("top-level keys not applied: %+v", got)
	}
	if got.Risk.DelegationHitThreshold != 5 || got.Risk.SpeedMaxElapsed != 8*time.Second {
		t.Fatalf("risk keys not applied: %+v", got.Risk)
	}
	if len(got.Risk.DelegationPhrases) != 1 || got.Risk.DelegationPhrases[0] != "just give me the code" {
		t.Fatalf("phrases not replaced: %v", got.Risk.DelegationPhrases)
	}
	if got.Path.TrendThreshold != 0.3 {
		t.Fatalf("path threshold not applied: %v", got.Path.TrendThreshold)
	}
	if got.Risk.SpeedMinLength != base.Risk.SpeedMinLength {
		t.Fatalf("absent keys must keep defaults, got %d", got.Risk.SpeedMinLength)
	}
	if got.Governor != base.Governor {
		t.Fatalf("governor config changed without keys")
	}
}

func TestLoadTutoringOverlayErrors(t *testing.T) {
	base := tutoring.DefaultConfig()
	if _, err := LoadTutoringOverlay(filepath.Join(t.TempDir(), "missing.yaml"), base); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(path, []byte("risk: [unclosed"), 0o600)
	if _, err := LoadTutoringOverlay(path, base); err == nil {
		t.Fatalf("expected parse error")
	}
}
