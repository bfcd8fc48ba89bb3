package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/noticekit/pkg/usecase"
)

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	errs := []error{
		usecase.ErrMissingFields,
		usecase.ErrInvalidKey,
		usecase.ErrBadToken,
		usecase.ErrNotLoggedIn,
		usecase.ErrPersistence,
	}

	for i, a := range errs {
		for j, b := range errs {
			if i != j {
				gt.Bool(t, errors.Is(a, b)).False()
			}
		}
	}
}

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"missing fields", goerr.Wrap(usecase.ErrMissingFields, "wrapped"), true},
		{"invalid key", goerr.Wrap(usecase.ErrInvalidKey, "wrapped"), true},
		{"bad token", goerr.Wrap(usecase.ErrBadToken, "wrapped"), true},
		{"not logged in", usecase.ErrNotLoggedIn, true},
		{"persistence", goerr.Wrap(usecase.ErrPersistence, "wrapped"), false},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, usecase.IsClientError(tt.err)).Equal(tt.want)
		})
	}
}
