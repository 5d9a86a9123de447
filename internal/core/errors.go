package core

import "fmt"

// ErrRecordNotFound is returned when a record id matches nothing in a
// person's store.
type ErrRecordNotFound struct {
	Entity string
	ID     string
}

func (e ErrRecordNotFound) Error() string {
	return fmt.Sprintf("record %s not found for %s", e.ID, e.Entity)
}

// ErrMedicationNotFound is returned when a medication id matches no catalog
// entry.
type ErrMedicationNotFound struct {
	ID string
}

func (e ErrMedicationNotFound) Error() string {
	return fmt.Sprintf("medication %s not found", e.ID)
}

// ErrDuplicateName is returned when a catalog write would leave two entries
// with the same name.
type ErrDuplicateName struct {
	Name string
}

func (e ErrDuplicateName) Error() string {
	return fmt.Sprintf("medication named %q already exists", e.Name)
}

// ErrMedicationInUse is returned when deleting a medication that at least one
// record still references. The caller has to dereference the usages first.
type ErrMedicationInUse struct {
	ID string
}

func (e ErrMedicationInUse) Error() string {
	return fmt.Sprintf("medication %s is referenced by one or more records", e.ID)
}

// ErrUnknownPerson is returned by the service when no record store is
// configured for the requested person.
type ErrUnknownPerson struct {
	ID string
}

func (e ErrUnknownPerson) Error() string {
	return fmt.Sprintf("no storage configured for person %s", e.ID)
}
