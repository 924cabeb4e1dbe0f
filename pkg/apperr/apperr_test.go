package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, KindUnknown, "save order")

	assert.Equal(t, KindUnknown, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "save order")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapUnwrapsThroughFmt(t *testing.T) {
	cause := errors.New("deadlock")
	wrapped := fmt.Errorf("outer: %w", Wrap(cause, KindConflict, "save exchange"))

	require.Equal(t, KindConflict, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, cause)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
}

func TestWithFieldAccumulates(t *testing.T) {
	err := New(KindValidation, "invalid asset").
		WithField("exchange", "unknown exchange").
		WithField("asset_class", "unknown asset class")

	require.Len(t, FieldsOf(err), 2)
	assert.Equal(t, "unknown exchange", FieldsOf(err)["exchange"])
}
