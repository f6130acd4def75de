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

	"github.com/san-kum/oscreach/internal/config"
	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/reach"
)

const (
	metadataFile = "metadata.json"
	flowpipeFile = "flowpipe.csv"
	analyticFile = "analytic.csv"
)

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
	Timestamp time.Time          `json:"timestamp"`
	Period    float64            `json:"period"`
	Amplitude float64            `json:"amplitude"`
	Omega     float64            `json:"omega"`
	Alpha     float64            `json:"alpha"`
	StepSize  float64            `json:"step_size"`
	Horizon   float64            `json:"horizon"`
	Model     string             `json:"model"`
	MaxOrder  int                `json:"max_order"`
	Initial   InitialMetadata    `json:"initial"`
	Segments  int                `json:"segments"`
	Metrics   map[string]float64 `json:"metrics"`
}

type InitialMetadata struct {
	Pos       float64 `json:"pos"`
	Vel       float64 `json:"vel"`
	RadiusPos float64 `json:"radius_pos"`
	RadiusVel float64 `json:"radius_vel"`
}

// Run is what gets persisted for one solve.
type Run struct {
	Config   config.Config
	Omega    float64
	Flowpipe *reach.Flowpipe
	// Analytic may be nil.
	Analytic *dynamo.Trajectory
	Metrics  map[string]float64
}

func (s *Store) Save(run Run) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("osc_%d", now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	pos, vel := run.Config.InitialPoint()
	meta := RunMetadata{
		ID:        runID,
		Timestamp: now,
		Period:    run.Config.Period,
		Amplitude: run.Config.Amplitude,
		Omega:     run.Omega,
		Alpha:     run.Config.Alpha,
		StepSize:  run.Config.StepSize(),
		Horizon:   run.Config.Horizon,
		Model:     string(run.Flowpipe.Algorithm.Model),
		MaxOrder:  run.Flowpipe.Algorithm.MaxOrder,
		Initial: InitialMetadata{
			Pos:       pos,
			Vel:       vel,
			RadiusPos: run.Config.Initial.RadiusPos,
			RadiusVel: run.Config.Initial.RadiusVel,
		},
		Segments: run.Flowpipe.Len(),
		Metrics:  run.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFlowpipe(filepath.Join(runDir, flowpipeFile), run.Flowpipe); err != nil {
		return "", err
	}
	if run.Analytic != nil {
		if err := writeTrajectory(filepath.Join(runDir, analyticFile), run.Analytic); err != nil {
			return "", err
		}
	}

	return runID, nil
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

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}

func writeFlowpipe(path string, fp *reach.Flowpipe) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"t0", "t1"}
	for i := 0; i < fp.Dim(); i++ {
		header = append(header, fmt.Sprintf("x%d_lo", i), fmt.Sprintf("x%d_hi", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, b := range fp.Boxes() {
		row := []string{formatFloat(b.Span.Start), formatFloat(b.Span.End)}
		for i := range b.Lo {
			row = append(row, formatFloat(b.Lo[i]), formatFloat(b.Hi[i]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeTrajectory(path string, tr *dynamo.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "pos", "vel"}); err != nil {
		return err
	}
	for i, t := range tr.Times {
		row := []string{formatFloat(t)}
		for _, v := range tr.States[i] {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every run, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
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

func readRecords(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseRow(record []string) ([]float64, error) {
	out := make([]float64, len(record))
	for i, s := range record {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// LoadFlowpipe returns the interval hulls stored for a run.
func (s *Store) LoadFlowpipe(runID string) ([]reach.Box, error) {
	records, err := readRecords(filepath.Join(s.baseDir, runID, flowpipeFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []reach.Box{}, nil
	}

	boxes := make([]reach.Box, 0, len(records)-1)
	for i, record := range records[1:] {
		vals, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", flowpipeFile, i+2, err)
		}
		if len(vals) < 2 || len(vals)%2 != 0 {
			return nil, fmt.Errorf("%s line %d: %w", flowpipeFile, i+2, dynamo.ErrDimensionMismatch)
		}

		n := (len(vals) - 2) / 2
		b := reach.Box{
			Span: reach.TimeSpan{Start: vals[0], End: vals[1]},
			Lo:   make(dynamo.State, n),
			Hi:   make(dynamo.State, n),
		}
		for d := 0; d < n; d++ {
			b.Lo[d] = vals[2+2*d]
			b.Hi[d] = vals[3+2*d]
		}
		boxes = append(boxes, b)
	}

	return boxes, nil
}

// LoadAnalytic returns the stored closed-form trajectory, or nil when the
// run had a set-valued initial state.
func (s *Store) LoadAnalytic(runID string) (*dynamo.Trajectory, error) {
	records, err := readRecords(filepath.Join(s.baseDir, runID, analyticFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	tr := &dynamo.Trajectory{}
	for i := 1; i < len(records); i++ {
		vals, err := parseRow(records[i])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", analyticFile, i+1, err)
		}
		if len(vals) < 2 {
			continue
		}
		tr.Times = append(tr.Times, vals[0])
		tr.States = append(tr.States, dynamo.State(vals[1:]))
	}
	return tr, nil
}
