package storage

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorHelpers(t *testing.T) {
	nf := fmt.Errorf("load: %w", &NotFoundError{Key: "k"})
	if !IsNotFound(nf) {
		t.Error("expected wrapped NotFoundError to match")
	}
	if IsUnavailable(nf) {
		t.Error("NotFoundError should not be reported as unavailable")
	}

	cause := errors.New("connection refused")
	su := &StorageUnavailableError{Cause: cause}
	if !IsUnavailable(su) {
		t.Error("expected StorageUnavailableError to match")
	}
	if !errors.Is(su, cause) {
		t.Error("expected StorageUnavailableError to unwrap to its cause")
	}

	se := &SerializationError{Operation: "unmarshal", Cause: cause}
	if se.Error() != "serialization error during unmarshal: connection refused" {
		t.Errorf("unexpected message: %s", se.Error())
	}
}
