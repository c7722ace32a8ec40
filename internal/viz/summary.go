package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bow-simulation/virtualbow-sub001/internal/model"
)

type row struct {
	label, value string
}

func table(title string, rows []row) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(title))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(MetricLabel.Width(26).Render(r.label))
		b.WriteString(MetricValue.Render(r.value))
		b.WriteString("\n")
	}
	return Panel.Render(strings.TrimSuffix(b.String(), "\n"))
}

func stress(p model.StressPeak, layers []model.LayerProperties) string {
	name := fmt.Sprintf("layer %d", p.Layer)
	if p.Layer < len(layers) {
		name = layers[p.Layer].Name
	}
	return fmt.Sprintf("%.1f MPa (%s, s = %.3f m)", p.Value/1e6, name, p.S)
}

// SummaryTable lays out the scalar results of a simulation.
func SummaryTable(out *model.Output) string {
	var layers []model.LayerProperties
	if out.Common.Limb != nil {
		layers = out.Common.Limb.Layers
	}

	panels := []string{table("bow", []row{
		{"string length", fmt.Sprintf("%.4f m", out.Common.StringLength)},
		{"string mass", fmt.Sprintf("%.2f g", out.Common.StringMass*1e3)},
		{"limb mass", fmt.Sprintf("%.2f g", out.Common.LimbMass*1e3)},
	})}

	if st := out.Statics; st != nil {
		panels = append(panels, table("statics", []row{
			{"final draw force", fmt.Sprintf("%.2f N", st.FinalDrawForce)},
			{"drawing work", fmt.Sprintf("%.3f J", st.DrawingWork)},
			{"storage factor", fmt.Sprintf("%.3f", st.StorageFactor)},
			{"max string force", fmt.Sprintf("%.2f N", st.MaxStringForce.Value)},
			{"max grip force", fmt.Sprintf("%.2f N", st.MaxGripForce.Value)},
			{"max tension", stress(st.MaxTension, layers)},
			{"max compression", stress(st.MaxCompression, layers)},
		}))
	}

	if dy := out.Dynamics; dy != nil {
		panels = append(panels, table("dynamics", []row{
			{"arrow velocity", fmt.Sprintf("%.2f m/s", dy.FinalArrowVelocity)},
			{"arrow energy", fmt.Sprintf("%.3f J", dy.FinalArrowEnergy)},
			{"efficiency", fmt.Sprintf("%.1f %%", 100*dy.Efficiency)},
			{"departure time", fmt.Sprintf("%.2f ms", dy.DepartureTime*1e3)},
			{"max string force", fmt.Sprintf("%.2f N", dy.MaxStringForce.Value)},
			{"max grip force", fmt.Sprintf("%.2f N", dy.MaxGripForce.Value)},
			{"max tension", stress(dy.MaxTension, layers)},
			{"max compression", stress(dy.MaxCompression, layers)},
			{"vibration frequency", fmt.Sprintf("%.1f Hz", dy.VibrationFrequency)},
			{"energy error", fmt.Sprintf("%.2e", dy.EnergyError)},
			{"timestep", fmt.Sprintf("%.2e s", dy.Timestep)},
		}))
	}

	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

// BowShape draws the whole bow (both limbs and the string) in state i of
// states, with the lower half mirrored from the simulated upper one.
func BowShape(states *model.States, i, w, h int) string {
	if i < 0 || i >= len(states.LimbX) {
		return ""
	}
	limb := Polyline{X: states.LimbX[i], Y: states.LimbY[i]}
	str := Polyline{X: states.StringX[i], Y: states.StringY[i]}
	return Plot(w, h, limb, limb.Mirror(), str, str.Mirror()).String()
}
