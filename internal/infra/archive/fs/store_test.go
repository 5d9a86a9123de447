package fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"medilog/internal/archive/core"
)

func newTempStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store, dir
}

func TestStore_PutGetListDelete(t *testing.T) {
	ctx := context.Background()
	store, dir := newTempStore(t)

	info, err := store.Put(ctx, "medilog_person_alice.json.2024-03-01T08-00-00.000000", bytes.NewReader([]byte(`{"entity":"person.alice"}`)), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key == "" || info.Size != int64(len(`{"entity":"person.alice"}`)) {
		t.Fatalf("unexpected info %+v", info)
	}

	// Backups are create-only.
	if _, err := store.Put(ctx, info.Key, bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatal("expected duplicate failure")
	}

	g, rc, err := store.Get(ctx, info.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != `{"entity":"person.alice"}` || g.Size != info.Size {
		t.Fatal("unexpected get artifacts")
	}

	// Backup copies sit next to the primary file under the root.
	if _, err := os.Stat(filepath.Join(dir, info.Key)); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}

	list, err := store.List(ctx, "medilog_person_alice.json.")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != info.Key {
		t.Fatalf("unexpected list %+v", list)
	}

	ok, err := store.Delete(ctx, info.Key)
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, info.Key)
	if err != nil || ok {
		t.Fatal("second delete should be false")
	}
}

func TestStore_ListSkipsTempFiles(t *testing.T) {
	ctx := context.Background()
	store, dir := newTempStore(t)

	if _, err := store.Put(ctx, "a.json.1", bytes.NewReader([]byte("a")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("partial"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}

	list, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "a.json.1" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestStore_ListIsSorted(t *testing.T) {
	ctx := context.Background()
	store, _ := newTempStore(t)

	for _, key := range []string{"b.json.2", "a.json.1", "a.json.2"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "a.json.")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "a.json.1" || list[1].Key != "a.json.2" {
		t.Fatalf("unexpected list order %+v", list)
	}
}

func TestStore_RejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	store, _ := newTempStore(t)

	for _, key := range []string{"", "  ", "../escape.json", "/abs.json", "a/../../b"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
}

func TestStore_Driver(t *testing.T) {
	store, _ := newTempStore(t)
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}
}
