package apperr

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{Validation("bad amount %d", 3), ErrValidation},
		{Permission("not yours"), ErrPermission},
		{NotFound("gone"), ErrNotFound},
		{InsufficientBalance("too little"), ErrInsufficientBalance},
	}
	for _, c := range cases {
		if !errors.Is(c.err, c.sentinel) {
			t.Errorf("%v does not wrap %v", c.err, c.sentinel)
		}
	}
}

func TestToFiberStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{Validation("x"), fiber.StatusBadRequest},
		{Permission("x"), fiber.StatusForbidden},
		{NotFound("x"), fiber.StatusNotFound},
		{InsufficientBalance("x"), fiber.StatusUnprocessableEntity},
		{ErrConflict, fiber.StatusConflict},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, c := range cases {
		var fe *fiber.Error
		if !errors.As(ToFiber(c.err), &fe) {
			t.Fatalf("ToFiber(%v) is not a fiber error", c.err)
		}
		if fe.Code != c.code {
			t.Errorf("ToFiber(%v) = %d, want %d", c.err, fe.Code, c.code)
		}
	}
	if ToFiber(nil) != nil {
		t.Fatal("ToFiber(nil) should be nil")
	}
}
