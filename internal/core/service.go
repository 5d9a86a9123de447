package core

import (
	"context"
	"log"
	"time"
)

// Service operation names, used for audit entries, metrics and traces.
const (
	OpAddOrUpdateRecord     = "add_or_update_record"
	OpDeleteRecord          = "delete_record"
	OpGetRecords            = "get_records"
	OpGetPersonList         = "get_person_list"
	OpAddOrUpdateMedication = "add_or_update_medication"
	OpDeleteMedication      = "delete_medication"
	OpGetMedications        = "get_medications"
	OpGetMedication         = "get_medication"
)

// Service is the call surface the host platform registers its handlers
// against. Inputs arrive already validated for shape and type; the service
// enforces the domain rules (known person, known medication reference) and
// reports every failure through the logger and the observability hooks.
// Mutating operations return their error so the host can surface it; read
// operations degrade to empty payloads.
type Service struct {
	coordinator *Coordinator
	logger      *log.Logger
	audit       AuditRecorder
	metrics     MetricsRecorder
	tracer      Tracer
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for operational messages.
func WithServiceLogger(l *log.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithAuditRecorder wires an audit recorder into every operation.
func WithAuditRecorder(a AuditRecorder) ServiceOption {
	return func(s *Service) { s.audit = a }
}

// WithMetricsRecorder wires a metrics recorder into every operation.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithTracer wires a tracer into every operation.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) { s.tracer = t }
}

// NewService constructs the service surface over a coordinator that has
// completed Setup.
func NewService(c *Coordinator, opts ...ServiceOption) *Service {
	s := &Service{coordinator: c, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// observe runs fn under the configured tracer, metrics and audit hooks. fn
// returns the subject id the operation acted on, when known.
func (s *Service) observe(ctx context.Context, op, entity string, fn func(ctx context.Context) (string, error)) error {
	start := time.Now()
	fctx := ctx
	var span TraceSpan
	if s.tracer != nil {
		fctx, span = s.tracer.Start(ctx, op)
	}
	subject, err := fn(fctx)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	}
	if s.audit != nil {
		entry := AuditEntry{
			Operation: op,
			Status:    AuditStatusSuccess,
			Entity:    entity,
			SubjectID: subject,
			At:        time.Now().UTC(),
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
		}
		s.audit.Record(ctx, entry)
	}
	return err
}

// RecordInput carries the validated arguments of an add_or_update_record
// call. An empty ID means "create". A nil MedicationAmount defaults to 1.0.
type RecordInput struct {
	PersonID         string
	ID               string
	Datetime         string
	Temperature      *float64
	MedicationID     *string
	MedicationAmount *float64
	Note             *string
}

// AddOrUpdateRecord writes an observation record. A request referencing a
// medication id that is not in the catalog is rejected before anything is
// persisted.
func (s *Service) AddOrUpdateRecord(ctx context.Context, in RecordInput) error {
	return s.observe(ctx, OpAddOrUpdateRecord, in.PersonID, func(ctx context.Context) (string, error) {
		if in.MedicationID != nil && *in.MedicationID != "" {
			if !s.coordinator.MedicationStorage().Exists(*in.MedicationID) {
				s.logger.Printf("medilog: medication %s not found, create the medication first", *in.MedicationID)
				return "", ErrMedicationNotFound{ID: *in.MedicationID}
			}
		}
		storage, ok := s.coordinator.Storage(in.PersonID)
		if !ok {
			s.logger.Printf("medilog: no storage found for person %s", in.PersonID)
			return "", ErrUnknownPerson{ID: in.PersonID}
		}
		amount := 1.0
		if in.MedicationAmount != nil {
			amount = *in.MedicationAmount
		}
		rec, err := storage.AddOrUpdate(ctx, in.ID, in.Datetime, in.Temperature, in.MedicationID, amount, in.Note)
		if err != nil {
			s.logger.Printf("medilog: error adding/updating record for %s: %v", in.PersonID, err)
			return "", err
		}
		s.logger.Printf("medilog: record added/updated for %s at %s with id %s", in.PersonID, in.Datetime, rec.ID)
		return rec.ID, nil
	})
}

// DeleteRecord removes a record. A miss propagates as ErrRecordNotFound so
// the host can surface it as a catchable error.
func (s *Service) DeleteRecord(ctx context.Context, personID, recordID string) error {
	return s.observe(ctx, OpDeleteRecord, personID, func(ctx context.Context) (string, error) {
		storage, ok := s.coordinator.Storage(personID)
		if !ok {
			s.logger.Printf("medilog: no storage found for person %s", personID)
			return "", ErrUnknownPerson{ID: personID}
		}
		if err := storage.Delete(ctx, recordID); err != nil {
			s.logger.Printf("medilog: error deleting record %s for %s: %v", recordID, personID, err)
			return "", err
		}
		s.logger.Printf("medilog: record %s deleted for %s", recordID, personID)
		return recordID, nil
	})
}

// Records returns all records for a person, newest first. An unknown person
// is logged and yields an empty list rather than an error past the service
// boundary.
func (s *Service) Records(ctx context.Context, personID string) []Record {
	var records []Record
	_ = s.observe(ctx, OpGetRecords, personID, func(ctx context.Context) (string, error) {
		storage, ok := s.coordinator.Storage(personID)
		if !ok {
			s.logger.Printf("medilog: no storage found for person %s", personID)
			records = []Record{}
			return "", ErrUnknownPerson{ID: personID}
		}
		records = storage.Records()
		return "", nil
	})
	return records
}

// PersonList returns every tracked person with their most recent record.
func (s *Service) PersonList(ctx context.Context) []PersonSummary {
	var persons []PersonSummary
	_ = s.observe(ctx, OpGetPersonList, "", func(ctx context.Context) (string, error) {
		persons = s.coordinator.PersonList()
		return "", nil
	})
	return persons
}

// MedicationInput carries the validated arguments of an
// add_or_update_medication call. An empty ID means "create".
type MedicationInput struct {
	ID               string
	Name             string
	Units            *string
	IsAntipyretic    bool
	ActiveIngredient *string
}

// AddOrUpdateMedication writes a catalog entry and returns it.
func (s *Service) AddOrUpdateMedication(ctx context.Context, in MedicationInput) (Medication, error) {
	var result Medication
	err := s.observe(ctx, OpAddOrUpdateMedication, "", func(ctx context.Context) (string, error) {
		med, err := s.coordinator.MedicationStorage().AddOrUpdate(ctx, in.ID, in.Name, in.Units, in.IsAntipyretic, in.ActiveIngredient)
		if err != nil {
			s.logger.Printf("medilog: error adding/updating medication %q: %v", in.Name, err)
			return in.ID, err
		}
		verb := "created"
		if in.ID != "" {
			verb = "updated"
		}
		s.logger.Printf("medilog: medication %s: %s (id %s)", verb, med.Name, med.ID)
		result = med
		return med.ID, nil
	})
	return result, err
}

// DeleteMedication removes a catalog entry unless a record anywhere still
// references it.
func (s *Service) DeleteMedication(ctx context.Context, medicationID string) error {
	return s.observe(ctx, OpDeleteMedication, "", func(ctx context.Context) (string, error) {
		err := s.coordinator.MedicationStorage().Delete(ctx, medicationID, s.coordinator.IsMedicationInUse)
		if err != nil {
			s.logger.Printf("medilog: error deleting medication %s: %v", medicationID, err)
			return medicationID, err
		}
		s.logger.Printf("medilog: medication %s deleted", medicationID)
		return medicationID, nil
	})
}

// Medications returns all catalog entries.
func (s *Service) Medications(ctx context.Context) []Medication {
	var meds []Medication
	_ = s.observe(ctx, OpGetMedications, "", func(ctx context.Context) (string, error) {
		meds = s.coordinator.MedicationStorage().All()
		return "", nil
	})
	return meds
}

// GetMedication returns a single catalog entry, or nil when the id is
// unknown. The miss is logged as a warning, not treated as an error.
func (s *Service) GetMedication(ctx context.Context, medicationID string) *Medication {
	var result *Medication
	_ = s.observe(ctx, OpGetMedication, "", func(ctx context.Context) (string, error) {
		med, ok := s.coordinator.MedicationStorage().Get(medicationID)
		if !ok {
			s.logger.Printf("medilog: medication %s not found", medicationID)
			return medicationID, nil
		}
		result = &med
		return medicationID, nil
	})
	return result
}
