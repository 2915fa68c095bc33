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

	"github.com/san-kum/mepsim/internal/config"
	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	pathFile     = "path.csv"
	energiesFile = "energies.csv"
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

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Timestamp       time.Time          `json:"timestamp"`
	Status          string             `json:"status"`
	Iterations      int                `json:"iterations"`
	InitialEnergy   float64            `json:"initial_energy"`
	FinalEnergy     float64            `json:"final_energy"`
	EnergyIncreased bool               `json:"energy_increased"`
	Seconds         float64            `json:"seconds"`
	Config          *config.Config     `json:"config"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Save writes a run as metadata.json, path.csv (final chain) and
// energies.csv (average energy per iteration) and returns its ID.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result, path []geom.Vec2) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:              runID,
		Name:            name,
		Timestamp:       now,
		Status:          result.Status.String(),
		Iterations:      result.Iterations,
		InitialEnergy:   result.InitialEnergy,
		FinalEnergy:     result.FinalEnergy,
		EnergyIncreased: result.EnergyIncreased,
		Seconds:         result.Duration.Seconds(),
		Config:          cfg,
		Metrics:         finiteMetrics(result.Metrics),
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	field := cfg.Field()
	pathRows := [][]string{{"index", "x", "y", "energy"}}
	for i, p := range path {
		pathRows = append(pathRows, []string{
			strconv.Itoa(i),
			formatFloat(p.X),
			formatFloat(p.Y),
			formatFloat(field.EnergyAt(p)),
		})
	}
	if err := writeCSV(filepath.Join(runDir, pathFile), pathRows); err != nil {
		return "", err
	}

	energyRows := [][]string{{"iteration", "energy", "elapsed_ms"}}
	for i, e := range result.Energies {
		var elapsed time.Duration
		if i < len(result.Durations) {
			elapsed = result.Durations[i]
		}
		energyRows = append(energyRows, []string{
			strconv.Itoa(i),
			formatFloat(e),
			strconv.FormatFloat(float64(elapsed.Microseconds())/1000, 'f', 3, 64),
		})
	}
	if err := writeCSV(filepath.Join(runDir, energiesFile), energyRows); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first.
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

// Latest returns the ID of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs in %s", s.baseDir)
	}
	return runs[len(runs)-1].ID, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadPath(runID string) ([]geom.Vec2, error) {
	records, err := readCSV(filepath.Join(s.Dir(runID), pathFile))
	if err != nil {
		return nil, err
	}

	path := make([]geom.Vec2, 0, len(records))
	for _, record := range records {
		if len(record) < 3 {
			continue
		}
		x, errX := strconv.ParseFloat(record[1], 64)
		y, errY := strconv.ParseFloat(record[2], 64)
		if errX != nil || errY != nil {
			continue
		}
		path = append(path, geom.V(x, y))
	}
	return path, nil
}

func (s *Store) LoadEnergies(runID string) ([]float64, error) {
	records, err := readCSV(filepath.Join(s.Dir(runID), energiesFile))
	if err != nil {
		return nil, err
	}

	energies := make([]float64, 0, len(records))
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		e, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		energies = append(energies, e)
	}
	return energies, nil
}

// finiteMetrics drops values JSON cannot carry.
func finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
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

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// readCSV returns the data rows, header dropped.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}
