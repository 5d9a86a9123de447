package core

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"medilog/internal/archive"
)

// CatalogChangeFunc is invoked synchronously after the medication catalog
// finished a save.
type CatalogChangeFunc func()

// MedicationStore owns the shared medication catalog, backed by a single JSON
// file. Entry names are unique; entries referenced by records cannot be
// deleted, which the caller enforces through the usage predicate so the
// catalog stays ignorant of record stores.
type MedicationStore struct {
	path     string
	archive  archive.Store
	onChange CatalogChangeFunc
	doc      medicationDocument
}

// NewMedicationStore creates a catalog store backed by the file at path.
// onChange may be nil.
func NewMedicationStore(path string, ar archive.Store, onChange CatalogChangeFunc) *MedicationStore {
	return &MedicationStore{path: path, archive: ar, onChange: onChange, doc: emptyCatalog()}
}

func emptyCatalog() medicationDocument {
	return medicationDocument{Medications: &[]Medication{}}
}

// Path returns the backing file path.
func (s *MedicationStore) Path() string { return s.path }

// Load reads the backing file if present. Malformed content or a document
// without a medications key resets to an empty catalog; a missing file is
// empty state. Nothing is written to disk.
func (s *MedicationStore) Load() error {
	s.doc = emptyCatalog()
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var loaded medicationDocument
	if err := json.Unmarshal(b, &loaded); err != nil {
		return nil
	}
	if loaded.Medications == nil {
		return nil
	}
	s.doc = loaded
	return nil
}

// All returns the live ordered catalog slice (not a defensive copy).
func (s *MedicationStore) All() []Medication { return *s.doc.Medications }

// Get returns the entry with the given id.
func (s *MedicationStore) Get(id string) (Medication, bool) {
	for _, med := range *s.doc.Medications {
		if med.ID == id {
			return med, true
		}
	}
	return Medication{}, false
}

// Exists reports whether an entry with the given id is present. Callers use
// it to validate medication references before writing records.
func (s *MedicationStore) Exists(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// IsNameUnique reports whether no entry other than excludeID carries the
// exact name.
func (s *MedicationStore) IsNameUnique(name, excludeID string) bool {
	for _, med := range *s.doc.Medications {
		if med.Name == name && med.ID != excludeID {
			return false
		}
	}
	return true
}

// AddOrUpdate creates a new entry when id is empty, or overwrites the entry
// with that id. The duplicate-name check runs first, before any mutation; an
// update for an unknown id fails with ErrMedicationNotFound. Persists on
// success and returns the resulting entry.
func (s *MedicationStore) AddOrUpdate(ctx context.Context, id, name string, units *string, isAntipyretic bool, activeIngredient *string) (Medication, error) {
	if !s.IsNameUnique(name, id) {
		return Medication{}, ErrDuplicateName{Name: name}
	}
	meds := *s.doc.Medications
	var result Medication
	if id != "" {
		updated := false
		for i := range meds {
			if meds[i].ID == id {
				meds[i] = Medication{
					ID:               id,
					Name:             name,
					Units:            units,
					IsAntipyretic:    isAntipyretic,
					ActiveIngredient: activeIngredient,
				}
				result = meds[i]
				updated = true
				break
			}
		}
		if !updated {
			return Medication{}, ErrMedicationNotFound{ID: id}
		}
	} else {
		result = Medication{
			ID:               newID(),
			Name:             name,
			Units:            units,
			IsAntipyretic:    isAntipyretic,
			ActiveIngredient: activeIngredient,
		}
		meds = append(meds, result)
		s.doc.Medications = &meds
	}
	if err := s.save(ctx); err != nil {
		return Medication{}, err
	}
	return result, nil
}

// Delete removes the entry with the given id. inUse is the caller-supplied
// usage predicate; when it reports true the catalog is left untouched and
// ErrMedicationInUse is returned. An unknown id yields ErrMedicationNotFound.
func (s *MedicationStore) Delete(ctx context.Context, id string, inUse func(id string) bool) error {
	if inUse != nil && inUse(id) {
		return ErrMedicationInUse{ID: id}
	}
	meds := *s.doc.Medications
	kept := meds[:0:0]
	for _, med := range meds {
		if med.ID != id {
			kept = append(kept, med)
		}
	}
	if len(kept) == len(meds) {
		return ErrMedicationNotFound{ID: id}
	}
	s.doc.Medications = &kept
	return s.save(ctx)
}

// CreateFromName returns the id of the entry with the exact name, creating a
// minimal entry when none exists. Used by the migration, which derives the
// catalog from legacy free-text values; reuse by name is what makes a
// re-run of the migration idempotent.
func (s *MedicationStore) CreateFromName(ctx context.Context, name string) (string, error) {
	for _, med := range *s.doc.Medications {
		if med.Name == name {
			return med.ID, nil
		}
	}
	med, err := s.AddOrUpdate(ctx, "", name, nil, false, nil)
	if err != nil {
		return "", err
	}
	return med.ID, nil
}

func (s *MedicationStore) save(ctx context.Context) error {
	if err := saveDocument(ctx, s.archive, s.path, s.doc); err != nil {
		return err
	}
	if s.onChange != nil {
		s.onChange()
	}
	return nil
}
