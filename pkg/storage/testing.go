package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// KVTestSuite defines a test suite that can be run against any KV implementation.
type KVTestSuite struct {
	NewKV func(t *testing.T) KV
}

// RunAllTests runs all KV tests against the provided implementation.
func (s *KVTestSuite) RunAllTests(t *testing.T) {
	t.Run("SetGet", s.TestSetGet)
	t.Run("Overwrite", s.TestOverwrite)
	t.Run("NotFound", s.TestNotFound)
	t.Run("Delete", s.TestDelete)
	t.Run("EmptyValue", s.TestEmptyValue)
	t.Run("ValueIsolation", s.TestValueIsolation)
	t.Run("ConcurrentAccess", s.TestConcurrentAccess)
	t.Run("Ping", s.TestPing)
}

// TestSetGet tests a basic write followed by a read.
func (s *KVTestSuite) TestSetGet(t *testing.T) {
	kv := s.NewKV(t)
	defer kv.Close()
	ctx := context.Background()

	if err := kv.Set(ctx, "coremem_memories", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := kv.Get(ctx, "coremem_memories")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Errorf("expected stored value, got %q", got)
	}
}

// TestOverwrite tests that Set replaces the prior value.
func (s *KVTestSuite) TestOverwrite(t *testing.T) {
	kv := s.NewKV(t)
	defer kv.Close()
	ctx := context.Background()

	_ = kv.Set(ctx, "k", []byte("first"))
	if err := kv.Set(ctx, "k", []byte("second")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("expected second, got %q", got)
	}
}

// TestNotFound tests the error returned for a missing key.
func (s *KVTestSuite) TestNotFound(t *testing.T) {
	kv := s.NewKV(t)
	defer kv.Close()

	_, err := kv.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	if !IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
}

// TestDelete tests key removal, including of a missing key.
func (s *KVTestSuite) TestDelete(t *testing.T) {
	kv := s.NewKV(t)
	defer kv.Close()
	ctx := context.Background()

	_ = kv.Set(ctx, "k", []byte("v"))
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !IsNotFound(err) {
		t.Errorf("expected NotFoundError after delete, got %v", err)
	}
	if err := kv.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of missing key should succeed, got %v", err)
	}
}

// TestEmptyValue tests that an empty value is distinct from a missing key.
func (s *KVTestSuite) TestEmptyValue(t *testing.T) {
	kv := s.NewKV(t)
	defer kv.Close()
	ctx := context.Background()

	if err := kv.Set(ctx, "k", []byte{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get of empty value failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty value, got %q", got)
	}
}

// TestValueIsolation tests that callers cannot mutate stored values.
func (s *KVTestSuite) TestValueIsolation(t *testing.T) {
	kv := s.NewKV(t)
	defer kv.Close()
	ctx := context.Background()

	value := []byte("abc")
	_ = kv.Set(ctx, "k", value)
	value[0] = 'x'

	got, _ := kv.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value changed through caller slice: %q", got)
	}
	got[1] = 'x'

	again, _ := kv.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value changed through returned slice: %q", again)
	}
}

// TestConcurrentAccess tests concurrent writers on distinct keys.
func (s *KVTestSuite) TestConcurrentAccess(t *testing.T) {
	kv := s.NewKV(t)
	defer kv.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n)
			if err := kv.Set(ctx, key, []byte(key)); err != nil {
				t.Errorf("Set %s failed: %v", key, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("key-%d", i)
		got, err := kv.Get(ctx, key)
		if err != nil {
			t.Errorf("Get %s failed: %v", key, err)
			continue
		}
		if string(got) != key {
			t.Errorf("expected %s, got %q", key, got)
		}
	}
}

// TestPing tests the health check.
func (s *KVTestSuite) TestPing(t *testing.T) {
	kv := s.NewKV(t)
	defer kv.Close()

	if err := kv.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
