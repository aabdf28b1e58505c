package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	cb := New[int](Options{Name: "test", FailureThreshold: 2, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, errBoom })
		assert.ErrorIs(t, err, errBoom)
	}

	calls := 0
	_, err := cb.Execute(func() (int, error) {
		calls++
		return 1, nil
	})
	assert.True(t, IsOpen(err))
	assert.Equal(t, 0, calls)
}

func TestBreaker_IsSuccessfulKeepsClosed(t *testing.T) {
	errDeclined := errors.New("declined")
	cb := New[int](Options{
		Name:             "test",
		FailureThreshold: 1,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errDeclined)
		},
	})

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, errDeclined })
		assert.ErrorIs(t, err, errDeclined)
		assert.False(t, IsOpen(err))
	}
}

func TestIsOpen(t *testing.T) {
	assert.False(t, IsOpen(nil))
	assert.False(t, IsOpen(errBoom))
}
