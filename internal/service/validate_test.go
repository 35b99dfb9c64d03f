package service

import (
	"errors"
	"testing"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
)

func TestNewValidatorRegistersNotBlank(t *testing.T) {
	v := newValidator()
	tests := []struct {
		value string
		ok    bool
	}{
		{value: "cat.png", ok: true},
		{value: "", ok: false},
		{value: "   ", ok: false},
		{value: "\t\n", ok: false},
	}
	for _, tc := range tests {
		err := v.Var(tc.value, "notblank")
		if (err == nil) != tc.ok {
			t.Fatalf("notblank(%q) error = %v, want ok=%v", tc.value, err, tc.ok)
		}
	}
}

func TestValidateInputReportsDetailKeys(t *testing.T) {
	v := newValidator()
	err := validateInput(v, createInvalidMessage, CreateInput{
		Filename:   " ",
		ImagePath:  "/uploads/a.png",
		ColorCount: 16,
		Difficulty: "easy",
		SessionID:  "",
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Message != createInvalidMessage {
		t.Fatalf("message = %q", verr.Message)
	}
	want := map[string]bool{"filenameRequired": true, "sessionIdRequired": true}
	if len(verr.Fields) != len(want) {
		t.Fatalf("fields = %v, want %v", verr.Fields, want)
	}
	for key := range want {
		if !verr.Fields[key] {
			t.Fatalf("missing field %q in %v", key, verr.Fields)
		}
	}
}
