package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover(t *testing.T) {
	t.Run("returns fn error", func(t *testing.T) {
		want := errors.New("boom")
		err := Recover(func() error { return want })
		assert.Same(t, want, err)
	})

	t.Run("converts panic", func(t *testing.T) {
		err := Recover(func() error { panic("kaboom") })
		require.Error(t, err)

		var pe *PanicError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "kaboom", pe.Value)
		assert.Contains(t, pe.StackTrace, "goroutine")
		assert.Equal(t, "panic: kaboom", err.Error())
	})
}

func TestTransientError(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("saving record: %w", NewTransientError("publish", cause))

	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsTransient(cause))
	assert.Contains(t, err.Error(), "publish: connection reset (transient)")
}

func TestMultiError(t *testing.T) {
	m := &MultiError{}
	assert.NoError(t, m.ErrorOrNil())

	m.Append(nil)
	assert.NoError(t, m.ErrorOrNil())

	first := errors.New("first")
	m.Append(first)
	assert.Equal(t, "first", m.ErrorOrNil().Error())

	m.Append(errors.New("second"))
	err := m.ErrorOrNil()
	require.Error(t, err)
	assert.Equal(t, "2 errors occurred: first; second", err.Error())
	assert.ErrorIs(t, err, first)
}
