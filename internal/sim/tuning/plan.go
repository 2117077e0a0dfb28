package tuning

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"voxelforge.ai/internal/sim/simerr"
	"voxelforge.ai/internal/sim/terrain"
)

// Plan is a complete generation request: a terrain, the shaping calls to
// apply in order, optional hand-placed blocks and erasers, and export
// options.
type Plan struct {
	Name     string         `yaml:"name" json:"name"`
	Terrain  terrain.Config `yaml:"terrain" json:"terrain"`
	Features []Feature      `yaml:"features" json:"features"`
	Blocks   []BlockSpec    `yaml:"blocks,omitempty" json:"blocks,omitempty"`
	Erasers  []EraserSpec   `yaml:"erasers,omitempty" json:"erasers,omitempty"`
	Export   Export         `yaml:"export" json:"export"`
}

type FeatureKind string

const (
	FeatureMountain FeatureKind = "mountain"
	FeatureRidge    FeatureKind = "ridge"
	FeaturePlateau  FeatureKind = "plateau"
	FeatureValley   FeatureKind = "valley"
	FeatureGorge    FeatureKind = "gorge"
	FeatureCrater   FeatureKind = "crater"
	FeatureLake     FeatureKind = "lake"
	FeatureRiver    FeatureKind = "river"
	FeatureFlatten  FeatureKind = "flatten"
	FeatureSmooth   FeatureKind = "smooth"
	FeatureRaise    FeatureKind = "raise"
	FeatureCarve    FeatureKind = "carve"
)

var featureKinds = map[FeatureKind]bool{
	FeatureMountain: true, FeatureRidge: true, FeaturePlateau: true,
	FeatureValley: true, FeatureGorge: true, FeatureCrater: true,
	FeatureLake: true, FeatureRiver: true, FeatureFlatten: true,
	FeatureSmooth: true, FeatureRaise: true, FeatureCarve: true,
}

// Feature is one shaping call. Which fields apply depends on Kind:
// radial kinds use X/Z as the centre, linear kinds (ridge, gorge, river)
// run from X/Z to X2/Z2, and area kinds (flatten, raise, carve) cover the
// W x D rectangle at X/Z.
type Feature struct {
	Kind FeatureKind `yaml:"kind" json:"kind"`

	X  int `yaml:"x" json:"x"`
	Z  int `yaml:"z" json:"z"`
	X2 int `yaml:"x2,omitempty" json:"x2,omitempty"`
	Z2 int `yaml:"z2,omitempty" json:"z2,omitempty"`
	W  int `yaml:"w,omitempty" json:"w,omitempty"`
	D  int `yaml:"d,omitempty" json:"d,omitempty"`

	Radius     float64 `yaml:"radius,omitempty" json:"radius,omitempty"`
	FlatRadius float64 `yaml:"flat_radius,omitempty" json:"flat_radius,omitempty"`
	Width      float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Height     float64 `yaml:"height,omitempty" json:"height,omitempty"`
	Depth      float64 `yaml:"depth,omitempty" json:"depth,omitempty"`
	Falloff    float64 `yaml:"falloff,omitempty" json:"falloff,omitempty"`
	RimHeight  float64 `yaml:"rim_height,omitempty" json:"rim_height,omitempty"`
	RimWidth   float64 `yaml:"rim_width,omitempty" json:"rim_width,omitempty"`

	Amount     int `yaml:"amount,omitempty" json:"amount,omitempty"`
	Iterations int `yaml:"iterations,omitempty" json:"iterations,omitempty"`

	SnowLine   *int `yaml:"snow_line,omitempty" json:"snow_line,omitempty"`
	WaterLevel *int `yaml:"water_level,omitempty" json:"water_level,omitempty"`
	Target     *int `yaml:"target,omitempty" json:"target,omitempty"`
}

type BlockSpec struct {
	ID         string            `yaml:"id" json:"id"`
	Position   [3]float64        `yaml:"position" json:"position"`
	Size       [3]int            `yaml:"size" json:"size"`
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
	Hollow     bool              `yaml:"hollow,omitempty" json:"hollow,omitempty"`
}

type EraserSpec struct {
	Kind     string     `yaml:"kind" json:"kind"`
	Position [3]float64 `yaml:"position" json:"position"`
	Radius   float64    `yaml:"radius,omitempty" json:"radius,omitempty"`
	Size     [3]float64 `yaml:"size,omitempty" json:"size,omitempty"`
	Height   float64    `yaml:"height,omitempty" json:"height,omitempty"`
	Axis     string     `yaml:"axis,omitempty" json:"axis,omitempty"`
}

type Export struct {
	Origin     string  `yaml:"origin,omitempty" json:"origin,omitempty"`
	Padding    int     `yaml:"padding,omitempty" json:"padding,omitempty"`
	Dimensions *[3]int `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
}

// ErrLimit marks plans or outputs rejected by Limits.
var ErrLimit = errors.New("limit exceeded")

func LoadPlan(path string) (Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, err
	}
	p, err := ParsePlan(raw)
	if err != nil {
		return Plan{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePlan decodes YAML (JSON is accepted as a subset) and rejects unknown
// keys.
func ParsePlan(raw []byte) (Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Plan{}, fmt.Errorf("plan: %w", err)
	}
	return p, nil
}

// Check enforces limits and feature kinds. Terrain and block semantics are
// checked when the plan runs.
func (p Plan) Check(l Limits) error {
	if l.MaxWidth > 0 && p.Terrain.Width > l.MaxWidth {
		return fmt.Errorf("plan: width %d exceeds %d: %w", p.Terrain.Width, l.MaxWidth, ErrLimit)
	}
	if l.MaxDepth > 0 && p.Terrain.Depth > l.MaxDepth {
		return fmt.Errorf("plan: depth %d exceeds %d: %w", p.Terrain.Depth, l.MaxDepth, ErrLimit)
	}
	if l.MaxFeatures > 0 && len(p.Features) > l.MaxFeatures {
		return fmt.Errorf("plan: %d features exceeds %d: %w", len(p.Features), l.MaxFeatures, ErrLimit)
	}
	for i, f := range p.Features {
		if !featureKinds[f.Kind] {
			return fmt.Errorf("%w: plan features[%d]: unknown kind %q", simerr.ErrInvalidConfiguration, i, f.Kind)
		}
	}
	return nil
}
