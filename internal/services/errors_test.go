package services

import (
	"errors"
	"net/http"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrExternalTool, "encode", "run", "ffmpeg exited", cause)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	want := "external tool error: encode: run: ffmpeg exited: boom"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "fetch", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Wrap(ErrValidation, "process", "", "missing url", nil), http.StatusBadRequest},
		{"extraction", Wrap(ErrExtraction, "extract", "", "text too short", nil), http.StatusUnprocessableEntity},
		{"not found", Wrap(ErrNotFound, "jobs", "", "unknown job", nil), http.StatusNotFound},
		{"transient", Wrap(ErrTransient, "fetch", "", "request failed", nil), http.StatusInternalServerError},
		{"untagged", errors.New("surprise"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("%s: HTTPStatus = %d, want %d", tc.name, got, tc.want)
		}
	}
}
