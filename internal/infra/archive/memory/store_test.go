package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"medilog/internal/archive/core"
)

func TestStore_PutGetListDelete(t *testing.T) {
	ctx := context.Background()
	store := New()

	info, err := store.Put(ctx, "medications.json.2024-03-01T08-00-00.000000", bytes.NewReader([]byte(`{"medications":[]}`)), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(`{"medications":[]}`)) || info.ContentType != "application/json" {
		t.Fatalf("unexpected info %+v", info)
	}

	if _, err := store.Put(ctx, info.Key, bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatal("expected duplicate failure")
	}

	g, rc, err := store.Get(ctx, info.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != `{"medications":[]}` || g.ContentType != "application/json" {
		t.Fatal("unexpected get artifacts")
	}

	list, err := store.List(ctx, "medications.json.")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %+v", err, list)
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

func TestStore_GetMissingIsNotExist(t *testing.T) {
	_, _, err := New().Get(context.Background(), "missing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestStore_ListSortedWithPrefix(t *testing.T) {
	ctx := context.Background()
	store := New()
	for _, key := range []string{"b.1", "a.2", "a.1"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "a.")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "a.1" || list[1].Key != "a.2" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestStore_RejectsEmptyKey(t *testing.T) {
	if _, err := New().Put(context.Background(), " ", bytes.NewReader(nil), core.PutOptions{}); err == nil {
		t.Fatal("blank key should be rejected")
	}
}

func TestStore_Driver(t *testing.T) {
	if New().Driver() != core.DriverMemory {
		t.Fatal("unexpected driver")
	}
}
