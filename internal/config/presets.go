package config

import (
	"sort"

	"github.com/bow-simulation/virtualbow-sub001/internal/geometry"
	"github.com/bow-simulation/virtualbow-sub001/internal/model"
)

// Presets build example bows. Each call returns a fresh copy.
var Presets = map[string]func() *model.InputData{
	"longbow": func() *model.InputData {
		return &model.InputData{
			Comment: "English style longbow, self bow of one wood layer",
			Profile: []geometry.SegmentInput{geometry.Line(0.8)},
			Width:   [][2]float64{{0, 0.03}, {1, 0.01}},
			Layers: []model.Layer{
				{Name: "yew", Rho: 600, E: 12e9, Height: [][2]float64{{0, 0.015}, {1, 0.008}}},
			},
			String:     model.String{StrandStiffness: 3500, StrandDensity: 0.0005, NStrands: 12},
			Masses:     model.Masses{Arrow: 0.025, StringCenter: 0.005, StringTip: 0.0005, LimbTip: 0.005},
			Damping:    model.Damping{RatioLimbs: 0.05, RatioString: 0.05},
			Dimensions: model.Dimensions{BraceHeight: 0.2, DrawLength: 0.7, HandleLength: 0.1},
			Settings:   model.DefaultSettings(),
		}
	},
	"flatbow": func() *model.InputData {
		return &model.InputData{
			Comment: "American flatbow with wide, thin limbs",
			Profile: []geometry.SegmentInput{geometry.Line(0.75)},
			Width:   [][2]float64{{0, 0.045}, {0.6, 0.04}, {1, 0.012}},
			Layers: []model.Layer{
				{Name: "hickory", Rho: 800, E: 15e9, Height: [][2]float64{{0, 0.013}, {1, 0.008}}},
			},
			String:     model.String{StrandStiffness: 3500, StrandDensity: 0.0005, NStrands: 14},
			Masses:     model.Masses{Arrow: 0.028, StringCenter: 0.005, StringTip: 0.0005, LimbTip: 0.004},
			Damping:    model.Damping{RatioLimbs: 0.05, RatioString: 0.05},
			Dimensions: model.Dimensions{BraceHeight: 0.17, DrawLength: 0.7, HandleLength: 0.15, HandleSetback: 0.01},
			Settings:   model.DefaultSettings(),
		}
	},
	"recurve": func() *model.InputData {
		return &model.InputData{
			Comment: "Laminated recurve with glass back and belly",
			Profile: []geometry.SegmentInput{
				geometry.Line(0.4),
				geometry.Spiral(0.15, 0, 0.5),
				geometry.Arc(0.1, 0.5),
			},
			Width: [][2]float64{{0, 0.04}, {0.7, 0.03}, {1, 0.012}},
			Layers: []model.Layer{
				{Name: "glass back", Rho: 1900, E: 40e9, Height: [][2]float64{{0, 0.001}}},
				{Name: "maple core", Rho: 700, E: 12e9, Height: [][2]float64{{0, 0.01}, {1, 0.005}}},
				{Name: "glass belly", Rho: 1900, E: 40e9, Height: [][2]float64{{0, 0.001}}},
			},
			String:     model.String{StrandStiffness: 3500, StrandDensity: 0.0005, NStrands: 16},
			Masses:     model.Masses{Arrow: 0.025, StringCenter: 0.006, StringTip: 0.0008, LimbTip: 0.003},
			Damping:    model.Damping{RatioLimbs: 0.05, RatioString: 0.05},
			Dimensions: model.Dimensions{BraceHeight: 0.22, DrawLength: 0.72, HandleLength: 0.2, HandleSetback: 0.02, HandleAngle: 0.05},
			Settings:   model.DefaultSettings(),
		}
	},
}

// Default returns the longbow preset.
func Default() *model.InputData {
	return Presets["longbow"]()
}

func GetPreset(name string) *model.InputData {
	preset, ok := Presets[name]
	if !ok {
		return nil
	}
	return preset()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
