package core

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"medilog/internal/archive"
)

// useFakeBackupClock makes backup keys deterministic and strictly
// increasing, so consecutive saves within the same microsecond cannot
// collide on a backup key.
func useFakeBackupClock(t *testing.T) {
	t.Helper()
	orig := backupNow
	var mu sync.Mutex
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	backupNow = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		base = base.Add(time.Second)
		return base
	}
	t.Cleanup(func() { backupNow = orig })
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func backupCount(t *testing.T, ar archive.Store, prefix string) int {
	t.Helper()
	infos, err := ar.List(context.Background(), prefix)
	if err != nil {
		t.Fatalf("list archive: %v", err)
	}
	return len(infos)
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
