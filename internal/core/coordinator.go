package core

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"medilog/internal/archive"
)

const (
	medicationsFile  = "medications.json"
	recordFilePrefix = "medilog_"
)

// ChangeListener observes completed saves across all stores. Callbacks fire
// synchronously from the saving goroutine.
type ChangeListener interface {
	RecordsChanged(entity string)
	MedicationsChanged()
}

// Coordinator owns the single medication catalog and one record store per
// tracked person. It is the only object the service layer talks to. All
// stores are constructed here and passed by reference; there is no global
// registry.
type Coordinator struct {
	dir       string
	logger    *log.Logger
	archive   archive.Store
	persons   map[string]*RecordStore
	order     []string
	catalog   *MedicationStore
	listeners []ChangeListener
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the logger used for operational messages.
func WithLogger(l *log.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// WithArchive sets the backup archive. When unset, Setup opens one from the
// environment rooted at the data directory.
func WithArchive(ar archive.Store) CoordinatorOption {
	return func(c *Coordinator) { c.archive = ar }
}

// WithChangeListener registers a listener for store change notifications.
func WithChangeListener(l ChangeListener) CoordinatorOption {
	return func(c *Coordinator) { c.listeners = append(c.listeners, l) }
}

// NewCoordinator creates a coordinator for the given data directory and
// tracked person identifiers. Call Setup before use.
func NewCoordinator(dir string, persons []string, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		dir:     dir,
		logger:  log.Default(),
		persons: make(map[string]*RecordStore, len(persons)),
		order:   append([]string(nil), persons...),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// recordFileName maps an entity identifier to its file name, replacing dots
// so host entity ids like person.alice stay filesystem-safe.
func recordFileName(entity string) string {
	return recordFilePrefix + strings.ReplaceAll(entity, ".", "_") + ".json"
}

// Setup creates the data directory, loads the catalog and every person's
// store, and runs the one-shot medication migration. It must complete before
// the service surface is constructed, so no call can observe a store
// mid-migration.
func (c *Coordinator) Setup(ctx context.Context) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if c.archive == nil {
		ar, err := archive.Open(ctx, c.dir)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		c.archive = ar
	}

	c.catalog = NewMedicationStore(filepath.Join(c.dir, medicationsFile), c.archive, c.medicationsChanged)
	if err := c.catalog.Load(); err != nil {
		return fmt.Errorf("load medication catalog: %w", err)
	}

	for _, entity := range c.order {
		store := NewRecordStore(entity, filepath.Join(c.dir, recordFileName(entity)), c.archive, c.recordsChanged)
		if err := store.Load(); err != nil {
			return fmt.Errorf("load records for %s: %w", entity, err)
		}
		c.persons[entity] = store
	}

	return c.migrateMedications(ctx)
}

// Storage returns the record store for a person id.
func (c *Coordinator) Storage(personID string) (*RecordStore, bool) {
	store, ok := c.persons[personID]
	return store, ok
}

// MedicationStorage returns the shared catalog store.
func (c *Coordinator) MedicationStorage() *MedicationStore { return c.catalog }

// Persons returns the tracked person identifiers in configuration order.
func (c *Coordinator) Persons() []string {
	return append([]string(nil), c.order...)
}

// IsMedicationInUse reports whether any record in any store references the
// medication id. This is the predicate handed to the catalog's Delete.
func (c *Coordinator) IsMedicationInUse(medicationID string) bool {
	for _, store := range c.persons {
		for _, rec := range store.Records() {
			if rec.MedicationID != nil && *rec.MedicationID == medicationID {
				return true
			}
		}
	}
	return false
}

// PersonSummary pairs a person with their most recent record, if any.
type PersonSummary struct {
	Entity       string  `json:"entity"`
	RecentRecord *Record `json:"recent_record"`
}

// PersonList returns every tracked person with their most recent record.
// Recency is the maximum datetime string under lexicographic ordering; the
// datetime stays opaque, so whatever ordering its representation induces is
// the one used. Ties keep the first record seen.
func (c *Coordinator) PersonList() []PersonSummary {
	result := make([]PersonSummary, 0, len(c.order))
	for _, entity := range c.order {
		store := c.persons[entity]
		var recent *Record
		for i := range store.Records() {
			rec := &store.Records()[i]
			if recent == nil || rec.Datetime > recent.Datetime {
				recent = rec
			}
		}
		var clone *Record
		if recent != nil {
			cp := *recent
			clone = &cp
		}
		result = append(result, PersonSummary{Entity: entity, RecentRecord: clone})
	}
	return result
}

// AddChangeListener registers an additional listener after construction.
func (c *Coordinator) AddChangeListener(l ChangeListener) {
	c.listeners = append(c.listeners, l)
}

func (c *Coordinator) recordsChanged(entity string) {
	for _, l := range c.listeners {
		l.RecordsChanged(entity)
	}
}

func (c *Coordinator) medicationsChanged() {
	for _, l := range c.listeners {
		l.MedicationsChanged()
	}
}
