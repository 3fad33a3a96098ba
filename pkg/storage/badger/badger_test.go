package badger

import (
	"context"
	"testing"

	"github.com/coremem/coremem/pkg/storage"
)

// TestBadgerStorageSuite runs the full KV test suite against BadgerStorage.
func TestBadgerStorageSuite(t *testing.T) {
	suite := &storage.KVTestSuite{
		NewKV: func(t *testing.T) storage.KV {
			db, err := NewBadgerStorage(&Config{
				Path:              t.TempDir(),
				SyncWrites:        false,
				ValueLogFileSize:  1 << 20,
				NumVersionsToKeep: 1,
			})
			if err != nil {
				t.Fatalf("Failed to create BadgerStorage: %v", err)
			}
			return db
		},
	}

	suite.RunAllTests(t)
}

func TestBadgerStorage_InMemory(t *testing.T) {
	db, err := NewBadgerStorage(&Config{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to create in-memory BadgerStorage: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := db.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, err)
	}
}

func TestBadgerStorage_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := NewBadgerStorage(&Config{Path: dir, SyncWrites: true})
	if err != nil {
		t.Fatalf("Failed to create BadgerStorage: %v", err)
	}
	if err := db.Set(ctx, "coremem_interactions", []byte(`[]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewBadgerStorage(&Config{Path: dir})
	if err != nil {
		t.Fatalf("Failed to reopen BadgerStorage: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "coremem_interactions")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if string(got) != `[]` {
		t.Errorf("expected [] after reopen, got %q", got)
	}
}

func TestBadgerStorage_PingAfterClose(t *testing.T) {
	db, err := NewBadgerStorage(&Config{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create BadgerStorage: %v", err)
	}
	_ = db.Close()

	if err := db.Ping(context.Background()); !storage.IsUnavailable(err) {
		t.Errorf("expected StorageUnavailableError after close, got %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}
