package drafterr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("failed to make pick: %w", ErrNotYourTurn)

	assert.True(t, errors.Is(err, ErrNotYourTurn))
	assert.False(t, errors.Is(err, ErrAlreadyDrafted))
	assert.Equal(t, KindTurnViolation, KindOf(err))
	assert.True(t, IsKind(err, KindTurnViolation))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindUnavailable, cause, "failed to insert pick")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to insert pick: connection reset", err.Error())
	assert.Equal(t, "unavailable", KindOf(err).String())
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindUnknown))
}
