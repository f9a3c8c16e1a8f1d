package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorMatching(t *testing.T) {
	err := fmt.Errorf("upload: %w", Invalid("title", "is required"))

	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation match for %v", err)
	}
	if errors.Is(err, ErrProvider) {
		t.Fatal("validation error must not match provider")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "title" {
		t.Fatalf("expected field title, got %+v", vErr)
	}
}

func TestProviderErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Provider("s3", "put", cause)

	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected provider match for %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if got := err.Error(); got != "s3 put: connection reset" {
		t.Fatalf("unexpected message %q", got)
	}
	if Provider("s3", "put", nil) != nil {
		t.Fatal("expected nil for nil cause")
	}
}
