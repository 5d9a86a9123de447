// Package core implements the medilog storage subsystem: the per-person
// record stores, the shared medication catalog, the one-shot legacy
// medication migration, and the coordinator plus service surface the host
// platform talks to.
package core

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
)

// Record is a single observation in a person's log. Datetime is an opaque
// caller-supplied timestamp string; the store never parses it. All optional
// fields marshal as explicit JSON nulls so documents stay diffable against
// files written by earlier releases.
type Record struct {
	ID               string   `json:"id"`
	Datetime         string   `json:"datetime"`
	Temperature      *float64 `json:"temperature"`
	MedicationID     *string  `json:"medication_id"`
	MedicationAmount float64  `json:"medication_amount"`
	Note             *string  `json:"note"`

	// LegacyMedication is the pre-migration free-text medication name. It is
	// only ever read from old files; the migration removes it and nothing
	// writes it back.
	LegacyMedication *string `json:"medication,omitempty"`

	// legacyPresent records that the file carried the legacy key at all,
	// including as an explicit null. A null value decodes to a nil
	// LegacyMedication, which alone cannot be told apart from a key that was
	// never there, and the migration must rewrite both.
	legacyPresent bool `json:"-"`
}

// UnmarshalJSON decodes a record and additionally notes whether the legacy
// medication key was present in the document.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*r = Record(p)
	_, r.legacyPresent = keys["medication"]
	return nil
}

// Medication is one entry of the shared catalog. Name is unique across the
// catalog (exact, case-sensitive match).
type Medication struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Units            *string `json:"units"`
	IsAntipyretic    bool    `json:"is_antipyretic"`
	ActiveIngredient *string `json:"active_ingredient"`
}

// recordDocument is the on-disk shape of one person's store. The entity field
// is a self-check: a file claiming a different entity is treated as foreign.
type recordDocument struct {
	Entity  string   `json:"entity"`
	Records []Record `json:"records"`
}

// medicationDocument is the on-disk shape of the catalog. Medications is a
// pointer so a file missing the key entirely fails the schema check instead
// of loading as an empty catalog.
type medicationDocument struct {
	Medications *[]Medication `json:"medications"`
}

// newID returns a 16-byte random identifier in hex, the same width the
// historical files carry.
func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
