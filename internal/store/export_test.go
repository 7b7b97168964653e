package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/sim"
	"github.com/san-kum/mrsim/internal/storage"
	"gonum.org/v1/gonum/spatial/r2"
)

func testData(t *testing.T) ExportData {
	t.Helper()
	traj, err := dynamo.NewTrajectoryFrom([]dynamo.ParticleState{
		{Time: 0, Position: r2.Vec{X: 1}, Slip: r2.Vec{Y: 1}},
		{Time: 0.1, Position: r2.Vec{X: 1.1}, Slip: r2.Vec{Y: 0.5}},
	})
	if err != nil {
		t.Fatal(err)
	}
	params, err := config.NewDimensionless(0.1, 1, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	result := &sim.Result{
		Trajectory: traj,
		Phase:      sim.Failed,
		Err:        dynamo.ErrOutOfDomain,
		Metrics:    map[string]float64{"path_length": 0.1},
	}
	return NewExportData("vortex", 2, params, result)
}

func TestNewExportData(t *testing.T) {
	data := testData(t)
	if data.Steps != 1 {
		t.Errorf("expected 1 step, got %d", data.Steps)
	}
	if data.Positions[1] != [2]float64{1.1, 0} {
		t.Errorf("unexpected position %v", data.Positions[1])
	}
	if data.Slips[1] != [2]float64{0, 0.5} {
		t.Errorf("unexpected slip %v", data.Slips[1])
	}
	if data.Status != "failed" || data.Error == "" {
		t.Errorf("expected failed status with error, got %q %q", data.Status, data.Error)
	}
}

func TestExportJSON(t *testing.T) {
	data := testData(t)
	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back ExportData
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Flow != "vortex" || back.Order != 2 || back.R != 2 {
		t.Errorf("unexpected header %+v", back)
	}
	if len(back.Times) != 2 || back.Metrics["path_length"] != 0.1 {
		t.Errorf("unexpected body %+v", back)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, data); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), raw) {
		t.Error("file and writer output differ")
	}
}

func TestFromRun(t *testing.T) {
	traj, err := dynamo.NewTrajectoryFrom([]dynamo.ParticleState{
		{Time: 0},
		{Time: 0.5, Position: r2.Vec{X: 1, Y: 2}, Slip: r2.Vec{X: -1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	meta := &storage.RunMetadata{
		Flow:   "blink",
		Order:  3,
		Dt:     0.5,
		Steps:  1,
		R:      1,
		S:      0.1,
		Status: "terminated",
	}
	data := FromRun(meta, traj)
	if data.Duration != 0.5 || data.Steps != 1 {
		t.Errorf("unexpected duration %v or steps %d", data.Duration, data.Steps)
	}
	if data.Positions[1] != [2]float64{1, 2} || data.Slips[1] != [2]float64{-1, 0} {
		t.Errorf("unexpected last state %v %v", data.Positions[1], data.Slips[1])
	}
	if data.Status != "terminated" || data.Error != "" {
		t.Errorf("unexpected status %q %q", data.Status, data.Error)
	}
}
