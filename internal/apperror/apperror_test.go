package apperror_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/flipflow/flipflow-backend/internal/apperror"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		kind apperror.Kind
		want int
	}{
		{apperror.KindAuth, http.StatusUnauthorized},
		{apperror.KindPermission, http.StatusForbidden},
		{apperror.KindValidation, http.StatusBadRequest},
		{apperror.KindNotFound, http.StatusNotFound},
		{apperror.KindConflict, http.StatusConflict},
		{apperror.KindTimeout, http.StatusGatewayTimeout},
		{apperror.KindNetwork, http.StatusBadGateway},
		{apperror.KindInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := apperror.New(tc.kind, "x").Status(); got != tc.want {
			t.Fatalf("kind %d status = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestRetryableHints(t *testing.T) {
	if apperror.New(apperror.KindValidation, "x").Retryable() {
		t.Fatal("validation errors must not suggest retry")
	}
	if apperror.New(apperror.KindPermission, "x").Retryable() {
		t.Fatal("permission errors must not suggest retry")
	}
	if !apperror.New(apperror.KindTimeout, "x").Retryable() {
		t.Fatal("timeouts should suggest retry")
	}
	if !apperror.New(apperror.KindNetwork, "x").Retryable() {
		t.Fatal("network errors should suggest retry")
	}
}

func TestFromErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apperror.Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, apperror.KindNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), apperror.KindNotFound},
		{"duplicate key", gorm.ErrDuplicatedKey, apperror.KindConflict},
		{"deadline", context.DeadlineExceeded, apperror.KindTimeout},
		{"canceled", context.Canceled, apperror.KindNetwork},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := apperror.FromError(tc.err); got.Kind != tc.want {
				t.Fatalf("kind = %d, want %d", got.Kind, tc.want)
			}
		})
	}
}

func TestFromErrorPassesThroughClassified(t *testing.T) {
	orig := apperror.New(apperror.KindPermission, "no")
	got := apperror.FromError(fmt.Errorf("handler: %w", orig))
	if got != orig {
		t.Fatalf("classified error was re-wrapped: %#v", got)
	}
}

func TestUnknownErrorsGetAnID(t *testing.T) {
	got := apperror.FromError(errors.New("boom"))
	if got.Kind != apperror.KindInternal {
		t.Fatalf("kind = %d, want internal", got.Kind)
	}
	if got.ID == "" {
		t.Fatal("internal errors must carry a generated error id")
	}
	// The raw cause stays out of the user-facing message.
	if got.Message != apperror.Message(apperror.KindInternal) {
		t.Fatalf("message leaked internals: %q", got.Message)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := apperror.Wrap(apperror.KindValidation, "bad input", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}
}
