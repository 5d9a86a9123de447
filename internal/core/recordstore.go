package core

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"medilog/internal/archive"
)

// ChangeFunc is invoked synchronously after a record store finished a save,
// with the owning entity identifier.
type ChangeFunc func(entity string)

// RecordStore owns one person's ordered observation log, backed by a single
// JSON file. Newest records sit at the front; updates keep their position.
// Access is single-writer by construction: the coordinator owns the store and
// every mutator persists before returning.
type RecordStore struct {
	entity   string
	path     string
	archive  archive.Store
	onChange ChangeFunc
	doc      recordDocument
}

// NewRecordStore creates a store for entity backed by the file at path.
// Backups of the file are written through ar. onChange may be nil.
func NewRecordStore(entity, path string, ar archive.Store, onChange ChangeFunc) *RecordStore {
	return &RecordStore{
		entity:   entity,
		path:     path,
		archive:  ar,
		onChange: onChange,
		doc:      recordDocument{Entity: entity},
	}
}

// Entity returns the identifier this store belongs to.
func (s *RecordStore) Entity() string { return s.entity }

// Path returns the backing file path.
func (s *RecordStore) Path() string { return s.path }

// Load reads the backing file if present. Malformed content and files whose
// entity does not match this store reset the in-memory state to an empty
// document instead of surfacing an error; a missing file is simply empty
// state. Nothing is written to disk.
func (s *RecordStore) Load() error {
	s.doc = recordDocument{Entity: s.entity}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var loaded recordDocument
	if err := json.Unmarshal(b, &loaded); err != nil {
		return nil
	}
	if loaded.Entity != s.entity {
		return nil
	}
	s.doc = loaded
	return nil
}

// Records returns the live ordered record slice. Callers must not hold onto
// it across mutations; it is not a defensive copy.
func (s *RecordStore) Records() []Record { return s.doc.Records }

// AddOrUpdate overwrites the record with the given id in place, or, when id
// is empty or unknown, inserts a new record with a fresh id at the front.
// The store is persisted before returning. Referential validity of
// medicationID is the caller's concern, not the store's.
func (s *RecordStore) AddOrUpdate(ctx context.Context, id, datetime string, temperature *float64, medicationID *string, medicationAmount float64, note *string) (Record, error) {
	updated := -1
	if id != "" {
		for i := range s.doc.Records {
			if s.doc.Records[i].ID == id {
				updated = i
				break
			}
		}
	}
	var rec Record
	if updated >= 0 {
		rec = Record{
			ID:               id,
			Datetime:         datetime,
			Temperature:      temperature,
			MedicationID:     medicationID,
			MedicationAmount: medicationAmount,
			Note:             note,
		}
		s.doc.Records[updated] = rec
	} else {
		rec = Record{
			ID:               newID(),
			Datetime:         datetime,
			Temperature:      temperature,
			MedicationID:     medicationID,
			MedicationAmount: medicationAmount,
			Note:             note,
		}
		s.doc.Records = append([]Record{rec}, s.doc.Records...)
	}
	if err := s.save(ctx); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Delete removes the record with the given id. When nothing matches it
// returns ErrRecordNotFound and performs no save.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	kept := s.doc.Records[:0:0]
	for _, rec := range s.doc.Records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(s.doc.Records) {
		return ErrRecordNotFound{Entity: s.entity, ID: id}
	}
	s.doc.Records = kept
	return s.save(ctx)
}

// migrateLegacy rewrites every record carrying the legacy free-text
// medication field: a non-empty value found in mapping becomes that
// medication id, anything else (blank or explicit null) becomes an explicit
// null. The legacy field is dropped either way. One save covers all
// rewritten records; a store without legacy fields is left untouched.
// Returns how many records received a mapped id.
func (s *RecordStore) migrateLegacy(ctx context.Context, mapping map[string]string) (int, error) {
	migrated := 0
	dirty := false
	for i := range s.doc.Records {
		rec := &s.doc.Records[i]
		if rec.LegacyMedication == nil && !rec.legacyPresent {
			continue
		}
		name := ""
		if rec.LegacyMedication != nil {
			name = *rec.LegacyMedication
		}
		if id, ok := mapping[name]; ok && name != "" {
			rec.MedicationID = &id
			migrated++
		} else {
			rec.MedicationID = nil
		}
		rec.LegacyMedication = nil
		rec.legacyPresent = false
		dirty = true
	}
	if !dirty {
		return 0, nil
	}
	if err := s.save(ctx); err != nil {
		return 0, err
	}
	return migrated, nil
}

func (s *RecordStore) save(ctx context.Context) error {
	if err := saveDocument(ctx, s.archive, s.path, s.doc); err != nil {
		return err
	}
	if s.onChange != nil {
		s.onChange(s.entity)
	}
	return nil
}
