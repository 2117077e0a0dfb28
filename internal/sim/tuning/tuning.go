package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"voxelforge.ai/internal/sim/terrain"
)

type Tuning struct {
	Terrain terrain.Params `yaml:"terrain"`
	Limits  Limits         `yaml:"limits"`
	Stream  Stream         `yaml:"stream"`

	// NoiseWorkers bounds the goroutines used for bulk noise fills; 0 means
	// GOMAXPROCS.
	NoiseWorkers int `yaml:"noise_workers"`
}

// Limits reject plans before any work is done.
type Limits struct {
	MaxWidth    int `yaml:"max_width"`
	MaxDepth    int `yaml:"max_depth"`
	MaxFeatures int `yaml:"max_features"`
	MaxEntries  int `yaml:"max_entries"`
}

type Stream struct {
	BatchSize      int `yaml:"batch_size"`
	WriteTimeoutMs int `yaml:"write_timeout_ms"`
	MaxMessageKB   int `yaml:"max_message_kb"`
}

func Defaults() Tuning {
	return Tuning{
		Terrain: terrain.DefaultParams(),
		Limits: Limits{
			MaxWidth:    512,
			MaxDepth:    512,
			MaxFeatures: 256,
			MaxEntries:  4_000_000,
		},
		Stream: Stream{
			BatchSize:      512,
			WriteTimeoutMs: 5000,
			MaxMessageKB:   256,
		},
	}
}

// Load overlays the file onto Defaults, so a partial tuning.yaml only
// needs the keys it changes.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Terrain = t.Terrain.Normalize()
	d := Defaults()
	if t.Limits.MaxWidth <= 0 {
		t.Limits.MaxWidth = d.Limits.MaxWidth
	}
	if t.Limits.MaxDepth <= 0 {
		t.Limits.MaxDepth = d.Limits.MaxDepth
	}
	if t.Limits.MaxFeatures <= 0 {
		t.Limits.MaxFeatures = d.Limits.MaxFeatures
	}
	if t.Limits.MaxEntries <= 0 {
		t.Limits.MaxEntries = d.Limits.MaxEntries
	}
	if t.Stream.BatchSize <= 0 {
		t.Stream.BatchSize = d.Stream.BatchSize
	}
	if t.Stream.WriteTimeoutMs <= 0 {
		t.Stream.WriteTimeoutMs = d.Stream.WriteTimeoutMs
	}
	if t.Stream.MaxMessageKB <= 0 {
		t.Stream.MaxMessageKB = d.Stream.MaxMessageKB
	}
	return t, nil
}
