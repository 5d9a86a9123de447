package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"medilog/internal/archive"
)

func writeFixture(t *testing.T, dir, name string, doc any) {
	t.Helper()
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func legacyRecord(id, datetime, medication string) map[string]any {
	rec := map[string]any{
		"id":                id,
		"datetime":          datetime,
		"temperature":       nil,
		"medication_amount": 1.0,
		"note":              nil,
		"medication":        medication,
	}
	return rec
}

func setupCoordinator(t *testing.T, dir string, persons []string) *Coordinator {
	t.Helper()
	useFakeBackupClock(t)
	c := NewCoordinator(dir, persons, WithLogger(quietLogger()), WithArchive(archive.NewMemory()))
	if err := c.Setup(context.Background()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return c
}

func TestMigrationMapsLegacyNamesAcrossStores(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "medilog_person_alice.json", map[string]any{
		"entity":  "person.alice",
		"records": []any{legacyRecord("a1", "2024-03-01T08:00:00", "Aspirin")},
	})
	writeFixture(t, dir, "medilog_person_bob.json", map[string]any{
		"entity":  "person.bob",
		"records": []any{legacyRecord("b1", "2024-03-01T09:00:00", "Aspirin")},
	})

	c := setupCoordinator(t, dir, []string{"person.alice", "person.bob"})

	meds := c.MedicationStorage().All()
	if len(meds) != 1 || meds[0].Name != "Aspirin" {
		t.Fatalf("catalog = %+v, want single Aspirin entry", meds)
	}

	alice, _ := c.Storage("person.alice")
	bob, _ := c.Storage("person.bob")
	aliceRec := alice.Records()[0]
	bobRec := bob.Records()[0]
	if aliceRec.MedicationID == nil || bobRec.MedicationID == nil {
		t.Fatal("migrated records missing medication id")
	}
	if *aliceRec.MedicationID != *bobRec.MedicationID {
		t.Fatalf("same name mapped to different ids: %s vs %s", *aliceRec.MedicationID, *bobRec.MedicationID)
	}
	if *aliceRec.MedicationID != meds[0].ID {
		t.Fatal("record references an id that is not in the catalog")
	}
	if aliceRec.LegacyMedication != nil {
		t.Fatal("legacy field survived migration in memory")
	}

	// The rewritten file must not carry the legacy key anymore.
	raw, err := os.ReadFile(filepath.Join(dir, "medilog_person_alice.json"))
	if err != nil {
		t.Fatalf("read rewritten file: %v", err)
	}
	if strings.Contains(string(raw), `"medication":`) {
		t.Fatalf("legacy field survived migration on disk:\n%s", raw)
	}

	if !MigrationComplete(dir) {
		t.Fatal("marker file not written")
	}
}

func TestMigrationIsIdempotentAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "medilog_person_alice.json", map[string]any{
		"entity":  "person.alice",
		"records": []any{legacyRecord("a1", "2024-03-01T08:00:00", "Aspirin")},
	})

	first := setupCoordinator(t, dir, []string{"person.alice"})
	firstID := *mustStorage(t, first, "person.alice").Records()[0].MedicationID

	second := setupCoordinator(t, dir, []string{"person.alice"})
	meds := second.MedicationStorage().All()
	if len(meds) != 1 {
		t.Fatalf("second startup grew the catalog: %+v", meds)
	}
	if got := *mustStorage(t, second, "person.alice").Records()[0].MedicationID; got != firstID {
		t.Fatalf("second startup rewrote the record: %s -> %s", firstID, got)
	}
}

func mustStorage(t *testing.T, c *Coordinator, personID string) *RecordStore {
	t.Helper()
	store, ok := c.Storage(personID)
	if !ok {
		t.Fatalf("no storage for %s", personID)
	}
	return store
}

func TestMigrationMarkerShortCircuits(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, migrationMarkerFile), nil, 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	writeFixture(t, dir, "medilog_person_alice.json", map[string]any{
		"entity":  "person.alice",
		"records": []any{legacyRecord("a1", "2024-03-01T08:00:00", "Aspirin")},
	})

	c := setupCoordinator(t, dir, []string{"person.alice"})

	if len(c.MedicationStorage().All()) != 0 {
		t.Fatal("migration ran despite marker")
	}
	rec := mustStorage(t, c, "person.alice").Records()[0]
	if rec.LegacyMedication == nil || *rec.LegacyMedication != "Aspirin" {
		t.Fatalf("legacy field should be untouched, got %+v", rec)
	}
}

func TestMigrationBlankLegacyBecomesExplicitNull(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "medilog_person_alice.json", map[string]any{
		"entity": "person.alice",
		"records": []any{
			legacyRecord("a1", "2024-03-01T08:00:00", ""),
			legacyRecord("a2", "2024-03-01T09:00:00", "Aspirin"),
		},
	})

	c := setupCoordinator(t, dir, []string{"person.alice"})

	// Blank names never become catalog entries.
	meds := c.MedicationStorage().All()
	if len(meds) != 1 || meds[0].Name != "Aspirin" {
		t.Fatalf("catalog = %+v, want single Aspirin entry", meds)
	}

	recs := mustStorage(t, c, "person.alice").Records()
	var blank *Record
	for i := range recs {
		if recs[i].ID == "a1" {
			blank = &recs[i]
		}
	}
	if blank == nil {
		t.Fatal("record a1 missing after migration")
	}
	if blank.MedicationID != nil {
		t.Fatalf("blank legacy name should map to nil, got %q", *blank.MedicationID)
	}
	if blank.LegacyMedication != nil {
		t.Fatal("legacy field survived migration")
	}

	raw, err := os.ReadFile(filepath.Join(dir, "medilog_person_alice.json"))
	if err != nil {
		t.Fatalf("read rewritten file: %v", err)
	}
	if !strings.Contains(string(raw), `"medication_id": null`) {
		t.Fatalf("expected explicit null medication_id on disk:\n%s", raw)
	}
}

func TestMigrationNullLegacyValueIsRewritten(t *testing.T) {
	dir := t.TempDir()
	nullLegacy := map[string]any{
		"id":                "a1",
		"datetime":          "2024-03-01T08:00:00",
		"temperature":       nil,
		"medication_amount": 1.0,
		"note":              nil,
		"medication":        nil,
	}
	writeFixture(t, dir, "medilog_person_alice.json", map[string]any{
		"entity":  "person.alice",
		"records": []any{nullLegacy},
	})

	c := setupCoordinator(t, dir, []string{"person.alice"})

	if len(c.MedicationStorage().All()) != 0 {
		t.Fatalf("null legacy value fabricated a catalog entry: %+v", c.MedicationStorage().All())
	}
	rec := mustStorage(t, c, "person.alice").Records()[0]
	if rec.MedicationID != nil {
		t.Fatalf("null legacy value should map to nil, got %q", *rec.MedicationID)
	}

	// The key must be gone from the rewritten file, not just nil in memory.
	raw, err := os.ReadFile(filepath.Join(dir, "medilog_person_alice.json"))
	if err != nil {
		t.Fatalf("read rewritten file: %v", err)
	}
	if strings.Contains(string(raw), `"medication":`) {
		t.Fatalf("null legacy key survived migration on disk:\n%s", raw)
	}
	if !strings.Contains(string(raw), `"medication_id": null`) {
		t.Fatalf("expected explicit null medication_id on disk:\n%s", raw)
	}
	if !MigrationComplete(dir) {
		t.Fatal("marker file not written")
	}
}

func TestMigrationReusesExistingCatalogEntry(t *testing.T) {
	dir := t.TempDir()
	existing := Medication{ID: "med-1", Name: "Ibuprofen"}
	writeFixture(t, dir, medicationsFile, map[string]any{
		"medications": []Medication{existing},
	})
	writeFixture(t, dir, "medilog_person_alice.json", map[string]any{
		"entity":  "person.alice",
		"records": []any{legacyRecord("a1", "2024-03-01T08:00:00", "Ibuprofen")},
	})

	c := setupCoordinator(t, dir, []string{"person.alice"})

	meds := c.MedicationStorage().All()
	if len(meds) != 1 {
		t.Fatalf("catalog = %+v, want the original single entry", meds)
	}
	rec := mustStorage(t, c, "person.alice").Records()[0]
	if rec.MedicationID == nil || *rec.MedicationID != "med-1" {
		t.Fatalf("record should reference the pre-existing entry, got %+v", rec)
	}
}

func TestMigrationWithoutLegacyDataWritesNoRecordFiles(t *testing.T) {
	dir := t.TempDir()

	setupCoordinator(t, dir, []string{"person.alice"})

	if !MigrationComplete(dir) {
		t.Fatal("marker file not written")
	}
	// A store that never had records must not gain a file from migration.
	if _, err := os.Stat(filepath.Join(dir, "medilog_person_alice.json")); !os.IsNotExist(err) {
		t.Fatalf("unexpected record file, stat err = %v", err)
	}
}
