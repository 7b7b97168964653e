// Package storage keeps finished runs on disk, one directory per run with a
// metadata.json and a trajectory.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/sim"
	"github.com/sirupsen/logrus"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var trajectoryHeader = []string{"time", "x", "y", "wx", "wy"}

type Store struct {
	baseDir string
	log     *logrus.Entry
}

func New(baseDir string) *Store {
	return &Store{
		baseDir: baseDir,
		log:     logrus.WithField("component", "storage"),
	}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// TrajectoryPath is the CSV file of a stored run.
func (s *Store) TrajectoryPath(runID string) string {
	return filepath.Join(s.baseDir, runID, trajectoryFile)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Flow        string             `json:"flow"`
	FlowOptions config.FlowOptions `json:"flow_options"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Order       int                `json:"order"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	R           float64            `json:"density_parameter"`
	S           float64            `json:"relaxation_parameter"`
	Position    config.Vec         `json:"position"`
	Slip        config.Vec         `json:"slip"`
	Status      string             `json:"status"`
	Error       string             `json:"error,omitempty"`
	Elapsed     time.Duration      `json:"elapsed"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes the result of a run started from cfg and returns its ID.
// Failed runs are stored with their partial trajectory.
func (s *Store) Save(cfg *config.Config, params config.Dimensionless, result *sim.Result) (string, error) {
	if result == nil || result.Trajectory == nil {
		return "", fmt.Errorf("save: empty result")
	}
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	first := result.Trajectory.First()
	meta := RunMetadata{
		ID:          runID,
		Flow:        cfg.Flow,
		FlowOptions: cfg.FlowOptions,
		Timestamp:   time.Now(),
		Seed:        cfg.Seed,
		Order:       cfg.Order,
		Dt:          params.Timestep(),
		Steps:       result.Trajectory.Steps(),
		R:           params.R(),
		S:           params.S(),
		Position:    config.FromR2(first.Position),
		Slip:        config.FromR2(first.Slip),
		Status:      result.Phase.String(),
		Elapsed:     result.Elapsed,
		Metrics:     finite(result.Metrics),
	}
	if result.Err != nil {
		meta.Error = result.Err.Error()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), result.Trajectory); err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{"id": runID, "steps": meta.Steps, "status": meta.Status}).Debug("run saved")
	return runID, nil
}

// finite drops metrics JSON cannot carry.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTrajectory(path string, traj *dynamo.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(trajectoryHeader); err != nil {
		f.Close()
		return err
	}
	for i := 0; i < traj.Len(); i++ {
		st := traj.At(i)
		row := []string{
			formatFloat(st.Time),
			formatFloat(st.Position.X),
			formatFloat(st.Position.Y),
			formatFloat(st.Slip.X),
			formatFloat(st.Slip.Y),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every stored run, newest first. Directories
// without readable metadata are skipped.
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
			s.log.WithError(err).WithField("dir", entry.Name()).Debug("skipping run directory")
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
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectory reads back the trajectory of a stored run.
func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(trajectoryHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("run %s: %w", runID, dynamo.ErrInvalidLength)
	}

	states := make([]dynamo.ParticleState, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [5]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s, row %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		st := dynamo.ParticleState{Time: vals[0]}
		st.Position.X, st.Position.Y = vals[1], vals[2]
		st.Slip.X, st.Slip.Y = vals[3], vals[4]
		states = append(states, st)
	}
	return dynamo.NewTrajectoryFrom(states)
}

// Delete removes a stored run.
func (s *Store) Delete(runID string) error {
	dir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err != nil {
		return err
	}
	return os.RemoveAll(dir)
}
