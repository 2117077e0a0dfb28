package heightmap

// Shape holds the knobs of the organic features.
type Shape struct {
	// WarpStrength displaces evaluation coordinates by up to this fraction of
	// the feature radius (or width for linear features).
	WarpStrength  float64 `yaml:"warp_strength" json:"warp_strength"`
	WarpFrequency float64 `yaml:"warp_frequency" json:"warp_frequency"`

	RidgeStrength  float64 `yaml:"ridge_strength" json:"ridge_strength"`
	RidgeFrequency float64 `yaml:"ridge_frequency" json:"ridge_frequency"`

	DetailStrength  float64 `yaml:"detail_strength" json:"detail_strength"`
	DetailFrequency float64 `yaml:"detail_frequency" json:"detail_frequency"`

	// Linear features.
	CurveStrength  float64 `yaml:"curve_strength" json:"curve_strength"`
	CurveFrequency float64 `yaml:"curve_frequency" json:"curve_frequency"`
	WidthVariation float64 `yaml:"width_variation" json:"width_variation"`
	EndTaper       float64 `yaml:"end_taper" json:"end_taper"`
	SubPeakHeight  float64 `yaml:"sub_peak_height" json:"sub_peak_height"`

	// CraterJitter scales the angular noise on crater radii.
	CraterJitter float64 `yaml:"crater_jitter" json:"crater_jitter"`
}

func DefaultShape() Shape {
	return Shape{
		WarpStrength:    0.3,
		WarpFrequency:   0.045,
		RidgeStrength:   0.35,
		RidgeFrequency:  0.09,
		DetailStrength:  0.06,
		DetailFrequency: 0.21,
		CurveStrength:   0.9,
		CurveFrequency:  0.035,
		WidthVariation:  0.3,
		EndTaper:        0.2,
		SubPeakHeight:   0.35,
		CraterJitter:    0.08,
	}
}

// Normalize fills unset knobs. The zero Shape means DefaultShape; otherwise
// a negative knob, or a zero frequency or taper, takes its default and a
// zero strength switches that effect off.
func (s Shape) Normalize() Shape {
	d := DefaultShape()
	if s == (Shape{}) {
		return d
	}
	strength := func(v, def float64) float64 {
		if v < 0 {
			return def
		}
		return v
	}
	freq := func(v, def float64) float64 {
		if v <= 0 {
			return def
		}
		return v
	}
	s.WarpStrength = strength(s.WarpStrength, d.WarpStrength)
	s.WarpFrequency = freq(s.WarpFrequency, d.WarpFrequency)
	s.RidgeStrength = strength(s.RidgeStrength, d.RidgeStrength)
	s.RidgeFrequency = freq(s.RidgeFrequency, d.RidgeFrequency)
	s.DetailStrength = strength(s.DetailStrength, d.DetailStrength)
	s.DetailFrequency = freq(s.DetailFrequency, d.DetailFrequency)
	s.CurveStrength = strength(s.CurveStrength, d.CurveStrength)
	s.CurveFrequency = freq(s.CurveFrequency, d.CurveFrequency)
	s.WidthVariation = strength(s.WidthVariation, d.WidthVariation)
	s.EndTaper = freq(s.EndTaper, d.EndTaper)
	s.SubPeakHeight = strength(s.SubPeakHeight, d.SubPeakHeight)
	s.CraterJitter = strength(s.CraterJitter, d.CraterJitter)
	return s
}
