package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// migrationMarkerFile is the durable sentinel recording that the one-shot
// legacy medication migration has completed. Presence is the whole contract;
// the file carries no content.
const migrationMarkerFile = ".migration_complete"

// MigrationComplete reports whether the marker is present in the data
// directory.
func MigrationComplete(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, migrationMarkerFile))
	return err == nil
}

// migrateMedications rewrites historical records that carry a free-text
// medication field to reference catalog entries instead, fabricating catalog
// entries for names seen only as text. The marker file gates the whole
// routine; it is written last, so a crash anywhere before that point causes a
// full retry on the next startup. The retry is safe: catalog creation is
// find-or-create by name, and stores rewritten on the first pass no longer
// carry the legacy field.
func (c *Coordinator) migrateMedications(ctx context.Context) error {
	marker := filepath.Join(c.dir, migrationMarkerFile)
	if _, err := os.Stat(marker); err == nil {
		c.logger.Printf("medilog: medication migration already complete")
		return nil
	}
	if c.catalog == nil {
		// Retried on next startup since the marker stays absent.
		c.logger.Printf("medilog: medication storage not initialized, skipping migration")
		return nil
	}

	c.logger.Printf("medilog: starting medication migration")

	names := make(map[string]struct{})
	for _, store := range c.persons {
		for _, rec := range store.Records() {
			if rec.LegacyMedication != nil && *rec.LegacyMedication != "" {
				names[*rec.LegacyMedication] = struct{}{}
			}
		}
	}

	// Unordered iteration is fine: names are globally unique keys, so the
	// final catalog does not depend on creation order.
	mapping := make(map[string]string, len(names))
	for name := range names {
		id, err := c.catalog.CreateFromName(ctx, name)
		if err != nil {
			return fmt.Errorf("create medication %q: %w", name, err)
		}
		mapping[name] = id
		c.logger.Printf("medilog: created medication %q -> %s", name, id)
	}

	migrated := 0
	for _, store := range c.persons {
		n, err := store.migrateLegacy(ctx, mapping)
		if err != nil {
			return fmt.Errorf("migrate records for %s: %w", store.Entity(), err)
		}
		migrated += n
	}

	f, err := os.OpenFile(marker, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("write migration marker: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	c.logger.Printf("medilog: medication migration complete, migrated %d records", migrated)
	return nil
}
