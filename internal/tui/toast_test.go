package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToasts_ExpireById(t *testing.T) {
	ts := newToasts()
	ts.Push(ToastInfo, "a")
	ts.Push(ToastSuccess, "b")
	ts.Expire(1)
	assert.Equal(t, []string{"b"}, ts.Texts())

	ts.Expire(1)
	assert.Equal(t, 1, ts.Len(), "expiring twice is harmless")
}

func TestToasts_DropOldestPastLimit(t *testing.T) {
	ts := newToasts()
	for _, s := range []string{"1", "2", "3", "4", "5"} {
		ts.Push(ToastError, s)
	}
	assert.Equal(t, []string{"3", "4", "5"}, ts.Texts())

	ts.Expire(2)
	assert.Equal(t, 3, ts.Len(), "already dropped")
	assert.Contains(t, ts.View(80), "5")
}

func TestToasts_EmptyViewIsBlank(t *testing.T) {
	assert.Empty(t, newToasts().View(80))
}
