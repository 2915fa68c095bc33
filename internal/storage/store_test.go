package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/mepsim/internal/config"
	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Status:        sim.StatusConverged,
		Iterations:    2,
		InitialEnergy: -1.0,
		FinalEnergy:   -1.5,
		Energies:      []float64{-1.0, -1.4, -1.5},
		Durations:     []time.Duration{0, time.Millisecond, 2 * time.Millisecond},
		Metrics: map[string]float64{
			"path_length":    10.5,
			"spacing_spread": math.Inf(1),
		},
	}
}

func testPath() []geom.Vec2 {
	return []geom.Vec2{geom.V(7.5, 0), geom.V(5, 5), geom.V(0, 7.5)}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("three_wells", config.DefaultConfig(), testResult(), testPath())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Name != "three_wells" {
		t.Errorf("expected name 'three_wells', got '%s'", meta.Name)
	}
	if meta.Status != "converged" {
		t.Errorf("expected status converged, got %s", meta.Status)
	}
	if meta.Metrics["path_length"] != 10.5 {
		t.Errorf("expected path_length 10.5, got %f", meta.Metrics["path_length"])
	}
	if _, ok := meta.Metrics["spacing_spread"]; ok {
		t.Error("non-finite metric should have been dropped")
	}
	if meta.Config == nil || meta.Config.Path.Elements != config.DefaultElements {
		t.Errorf("config not stored: %+v", meta.Config)
	}

	path, err := st.LoadPath(runID)
	if err != nil {
		t.Fatalf("load path failed: %v", err)
	}
	if len(path) != 3 || path[1] != geom.V(5, 5) {
		t.Errorf("unexpected path %v", path)
	}

	energies, err := st.LoadEnergies(runID)
	if err != nil {
		t.Fatalf("load energies failed: %v", err)
	}
	if len(energies) != 3 || energies[2] != -1.5 {
		t.Errorf("unexpected energies %v", energies)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Latest(); err == nil {
		t.Error("expected error for empty store")
	}

	first, err := st.Save("a", config.DefaultConfig(), testResult(), testPath())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save("b", config.DefaultConfig(), testResult(), testPath())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first {
		t.Errorf("expected %s first, got %s", first, runs[0].ID)
	}

	latest, err := st.Latest()
	if err != nil || latest != second {
		t.Errorf("expected latest %s, got %s (%v)", second, latest, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save("test", config.DefaultConfig(), testResult(), testPath())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "path.csv", "energies.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save("test", config.DefaultConfig(), testResult(), testPath())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(runID, &buf); err != nil {
		t.Fatalf("export json: %v", err)
	}
	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Run.ID != runID || len(data.Path) != 3 || len(data.Energies) != 3 {
		t.Errorf("unexpected export %+v", data)
	}

	buf.Reset()
	if err := st.ExportCSV(runID, &buf); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "index,x,y,energy\n") {
		t.Errorf("unexpected csv header: %q", buf.String())
	}

	out := filepath.Join(t.TempDir(), "run.json")
	if err := st.ExportJSONFile(runID, out); err != nil {
		t.Fatalf("export file: %v", err)
	}
}
