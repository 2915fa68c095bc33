package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/mepsim/internal/geom"
)

type ExportData struct {
	Run      RunMetadata `json:"run"`
	Path     []geom.Vec2 `json:"path"`
	Energies []float64   `json:"energies"`
}

// Export bundles a stored run into one document.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	path, err := s.LoadPath(runID)
	if err != nil {
		return nil, err
	}
	energies, err := s.LoadEnergies(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Path: path, Energies: energies}, nil
}

func (s *Store) ExportJSON(runID string, w io.Writer) error {
	data, err := s.Export(runID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (s *Store) ExportJSONFile(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := s.ExportJSON(runID, file); err != nil {
		return err
	}
	return file.Close()
}

// ExportCSV copies the stored path table to w.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.Dir(runID), pathFile))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
