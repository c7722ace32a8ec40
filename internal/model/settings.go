package model

import "github.com/bow-simulation/virtualbow-sub001/internal/solver"

// Settings control the discretisation and the solvers.
type Settings struct {
	NLimbElements   int                   `yaml:"n_limb_elements" json:"n_limb_elements"`
	NStringElements int                   `yaml:"n_string_elements" json:"n_string_elements"`
	NDrawSteps      int                   `yaml:"n_draw_steps" json:"n_draw_steps"`
	TimeSpanFactor  float64               `yaml:"time_span_factor" json:"time_span_factor"`
	TimeStepFactor  float64               `yaml:"time_step_factor" json:"time_step_factor"`
	SamplingRate    float64               `yaml:"sampling_rate" json:"sampling_rate"`
	Static          solver.StaticSettings `yaml:"static" json:"static"`
	Verbose         bool                  `yaml:"-" json:"-"`
}

func DefaultSettings() Settings {
	static := solver.DefaultStaticSettings()
	static.StepInit = 1e-3
	static.StepMax = 1e-2
	return Settings{
		NLimbElements:   30,
		NStringElements: 15,
		NDrawSteps:      50,
		TimeSpanFactor:  1.5,
		TimeStepFactor:  0.5,
		SamplingRate:    1e4,
		Static:          static,
	}
}

func (s Settings) Validate() error {
	switch {
	case s.NLimbElements < 2:
		return invalid("settings.n_limb_elements", "need at least 2, got %d", s.NLimbElements)
	case s.NStringElements < 1:
		return invalid("settings.n_string_elements", "need at least 1, got %d", s.NStringElements)
	case s.NDrawSteps < 2:
		return invalid("settings.n_draw_steps", "need at least 2, got %d", s.NDrawSteps)
	case !(s.TimeSpanFactor > 0):
		return invalid("settings.time_span_factor", "must be positive")
	case !(s.TimeStepFactor > 0 && s.TimeStepFactor <= 1):
		return invalid("settings.time_step_factor", "must be in (0, 1]")
	case !(s.SamplingRate > 0):
		return invalid("settings.sampling_rate", "must be positive")
	case s.Static.IterMax < 1:
		return invalid("settings.static.iter_max", "must be positive")
	case !(s.Static.StepMin > 0 && s.Static.StepMin <= s.Static.StepInit && s.Static.StepInit <= s.Static.StepMax):
		return invalid("settings.static", "need 0 < step_min <= step_init <= step_max")
	}
	return nil
}
