package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/bow-simulation/virtualbow-sub001/internal/model"
)

const (
	metadataFile = "metadata.json"
	outputFile   = "output.json"
	staticsFile  = "statics.csv"
	dynamicsFile = "dynamics.csv"
)

// Kind selects the states of a run.
type Kind string

const (
	Statics  Kind = "statics"
	Dynamics Kind = "dynamics"
)

func (k Kind) file() string {
	if k == Dynamics {
		return dynamicsFile
	}
	return staticsFile
}

// Store keeps simulation runs in one directory per run below baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Timestamp time.Time          `json:"timestamp"`
	Mode      string             `json:"mode"`
	Settings  model.Settings     `json:"settings"`
	Metrics   map[string]float64 `json:"metrics"`
}

// MetricNames returns the metric keys in sorted order.
func (m *RunMetadata) MetricNames() []string {
	names := make([]string, 0, len(m.Metrics))
	for name := range m.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save writes the summary, the complete output and the scalar state series
// of a run. It returns the new run's ID.
func (s *Store) Save(name string, in *model.InputData, mode model.Mode, out *model.Output) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     name,
		Timestamp: now,
		Mode:      mode.String(),
		Settings:  in.Settings,
		Metrics:   Summary(out),
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := ExportJSON(filepath.Join(runDir, outputFile), out); err != nil {
		return "", err
	}

	if out.Statics != nil {
		if err := writeStates(filepath.Join(runDir, staticsFile), &out.Statics.States); err != nil {
			return "", err
		}
	}
	if out.Dynamics != nil {
		if err := writeStates(filepath.Join(runDir, dynamicsFile), &out.Dynamics.States); err != nil {
			return "", err
		}
	}
	return runID, nil
}

// Summary collects the scalar results of a simulation.
func Summary(out *model.Output) map[string]float64 {
	m := map[string]float64{
		"string_length": out.Common.StringLength,
		"string_mass":   out.Common.StringMass,
		"limb_mass":     out.Common.LimbMass,
	}
	if st := out.Statics; st != nil {
		m["final_draw_force"] = st.FinalDrawForce
		m["drawing_work"] = st.DrawingWork
		m["storage_factor"] = st.StorageFactor
		m["static_max_string_force"] = st.MaxStringForce.Value
		m["static_max_grip_force"] = st.MaxGripForce.Value
		m["static_max_tension"] = st.MaxTension.Value
		m["static_max_compression"] = st.MaxCompression.Value
	}
	if dy := out.Dynamics; dy != nil {
		m["arrow_velocity"] = dy.FinalArrowVelocity
		m["arrow_energy"] = dy.FinalArrowEnergy
		m["efficiency"] = dy.Efficiency
		m["departure_time"] = dy.DepartureTime
		m["dynamic_max_string_force"] = dy.MaxStringForce.Value
		m["dynamic_max_grip_force"] = dy.MaxGripForce.Value
		m["dynamic_max_tension"] = dy.MaxTension.Value
		m["dynamic_max_compression"] = dy.MaxCompression.Value
		m["energy_error"] = dy.EnergyError
		m["timestep"] = dy.Timestep
		m["vibration_frequency"] = dy.VibrationFrequency
	}
	return m
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// columns are the scalar series written to the state tables.
var columns = []struct {
	name   string
	series func(*model.States) []float64
}{
	{"time", func(st *model.States) []float64 { return st.Time }},
	{"draw_length", func(st *model.States) []float64 { return st.DrawLength }},
	{"draw_force", func(st *model.States) []float64 { return st.DrawForce }},
	{"string_force", func(st *model.States) []float64 { return st.StringForce }},
	{"grip_force", func(st *model.States) []float64 { return st.GripForce }},
	{"arrow_pos", func(st *model.States) []float64 { return st.ArrowPos }},
	{"arrow_vel", func(st *model.States) []float64 { return st.ArrowVel }},
	{"arrow_acc", func(st *model.States) []float64 { return st.ArrowAcc }},
	{"e_pot_limbs", func(st *model.States) []float64 { return st.EPotLimbs }},
	{"e_kin_limbs", func(st *model.States) []float64 { return st.EKinLimbs }},
	{"e_pot_string", func(st *model.States) []float64 { return st.EPotString }},
	{"e_kin_string", func(st *model.States) []float64 { return st.EKinString }},
	{"e_kin_arrow", func(st *model.States) []float64 { return st.EKinArrow }},
}

func writeStates(path string, states *model.States) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.name
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range states.Len() {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = "0"
			if series := c.series(states); i < len(series) {
				row[j] = strconv.FormatFloat(series[i], 'g', -1, 64)
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadOutput reads the complete output of a run.
func (s *Store) LoadOutput(runID string) (*model.Output, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, outputFile))
	if err != nil {
		return nil, err
	}

	var out model.Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Table is a state series read back from a run. Rows hold the values in
// the order of Header.
type Table struct {
	Header []string
	Rows   [][]float64
}

// Column returns the series named name, or nil.
func (t *Table) Column(name string) []float64 {
	for j, h := range t.Header {
		if h != name {
			continue
		}
		col := make([]float64, len(t.Rows))
		for i, row := range t.Rows {
			if j < len(row) {
				col[i] = row[j]
			}
		}
		return col
	}
	return nil
}

func (s *Store) LoadStates(runID string, kind Kind) (*Table, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, kind.file()))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return &Table{}, nil
	}

	t := &Table{Header: records[0], Rows: make([][]float64, 0, len(records)-1)}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		row := make([]float64, 0, len(record))
		for _, field := range record {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", kind.file(), i+1, err)
			}
			row = append(row, val)
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}
