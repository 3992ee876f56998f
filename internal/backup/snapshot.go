package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/EanHD/homework-app/internal/model"
	"github.com/EanHD/homework-app/internal/store"
)

// snapshotVersion is bumped whenever the snapshot layout changes.
const snapshotVersion = 1

// Snapshot is a full portable copy of the user's data: classes, assignments
// (including reminder offsets and completion state), and settings.
type Snapshot struct {
	Version     int                `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	Classes     []model.Class      `json:"classes"`
	Assignments []model.Assignment `json:"assignments"`
	Settings    map[string]string  `json:"settings"`
}

// Service exports and imports snapshots against the live stores.
type Service struct {
	classes     *store.ClassStore
	assignments *store.AssignmentStore
	settings    *store.SettingsStore
}

// NewService creates a backup Service.
func NewService(classes *store.ClassStore, assignments *store.AssignmentStore, settings *store.SettingsStore) *Service {
	return &Service{classes: classes, assignments: assignments, settings: settings}
}

// Export builds a snapshot of the current data.
func (s *Service) Export() (*Snapshot, error) {
	classes, err := s.classes.List()
	if err != nil {
		return nil, fmt.Errorf("export classes: %w", err)
	}

	assignments, err := s.assignments.List()
	if err != nil {
		return nil, fmt.Errorf("export assignments: %w", err)
	}

	settings, err := s.settings.GetAll()
	if err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}

	return &Snapshot{
		Version:     snapshotVersion,
		ExportedAt:  time.Now().UTC(),
		Classes:     classes,
		Assignments: assignments,
		Settings:    settings,
	}, nil
}

// Import replaces the current data with the snapshot's contents. Classes are
// restored before assignments so class references resolve.
func (s *Service) Import(snap *Snapshot) error {
	if snap.Version > snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	if err := s.classes.ReplaceAll(snap.Classes); err != nil {
		return fmt.Errorf("import classes: %w", err)
	}
	if err := s.assignments.ReplaceAll(snap.Assignments); err != nil {
		return fmt.Errorf("import assignments: %w", err)
	}
	for key, value := range snap.Settings {
		if err := s.settings.Set(key, value); err != nil {
			return fmt.Errorf("import setting %s: %w", key, err)
		}
	}
	return nil
}

// ExportJSON writes a snapshot as indented JSON.
func (s *Service) ExportJSON(w io.Writer) error {
	snap, err := s.Export()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ImportJSON reads a JSON snapshot and imports it.
func (s *Service) ImportJSON(r io.Reader) error {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return s.Import(&snap)
}
