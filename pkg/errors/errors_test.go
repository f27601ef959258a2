package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsCode(t *testing.T) {
	notFound := New(CodeNotFound, "project not found")

	require.True(t, IsCode(notFound, CodeNotFound))
	require.False(t, IsCode(notFound, CodeInternal))

	wrapped := fmt.Errorf("loading dashboard: %w", notFound)
	require.True(t, IsCode(wrapped, CodeNotFound))

	require.False(t, IsCode(errors.New("plain"), CodeNotFound))
	require.False(t, IsCode(nil, CodeNotFound))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "archive scan failed")

	require.ErrorIs(t, err, cause)
	require.Equal(t, CodeInternal, err.Code)
	require.Contains(t, err.Error(), "archive scan failed")

	bare := Wrap(nil, CodeInvalid, "empty filter")
	require.Nil(t, bare.Err)
	require.Equal(t, CodeInvalid, bare.Code)
}
