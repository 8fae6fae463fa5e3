package errtypes

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := New(KindMissingCategory, "route", "category %d not loaded", 7)

	if !errors.Is(err, ErrMissingCategory) {
		t.Fatal("errors.Is(err, ErrMissingCategory) = false, erwartet true")
	}
	if errors.Is(err, ErrShapeMismatch) {
		t.Error("errors.Is(err, ErrShapeMismatch) = true, erwartet false")
	}

	wrapped := fmt.Errorf("request: %w", err)
	if KindOf(wrapped) != KindMissingCategory {
		t.Errorf("KindOf = %v, erwartet %v", KindOf(wrapped), KindMissingCategory)
	}
}

func TestWrapKeepsExistingKind(t *testing.T) {
	inner := New(KindShapeMismatch, "finalize", "bad shape")
	if got := Wrap(KindModelInference, "predict", inner); got != error(inner) {
		t.Errorf("Wrap hat bestehenden Fehler ersetzt: %v", got)
	}

	got := Wrap(KindStorage, "get", io.ErrUnexpectedEOF)
	if !errors.Is(got, ErrStorage) {
		t.Errorf("Wrap ohne Kind: %v", got)
	}
	if !errors.Is(got, io.ErrUnexpectedEOF) {
		t.Error("Ursache geht beim Wrap verloren")
	}

	if Wrap(KindStorage, "get", nil) != nil {
		t.Error("Wrap(nil) sollte nil liefern")
	}
}

func TestErrorMessage(t *testing.T) {
	cases := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: KindInvalidDimensions}, "invalid_dimensions"},
		{&Error{Kind: KindInvalidDimensions, Op: "size"}, "size: invalid_dimensions"},
		{&Error{Kind: KindStorage, Op: "get", Err: io.EOF}, "get: EOF"},
		{&Error{Kind: KindStorage, Op: "get", Msg: "sar_images/a", Err: io.EOF}, "get: sar_images/a: EOF"},
	}
	for _, tt := range cases {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, erwartet %q", got, tt.want)
		}
	}
}
