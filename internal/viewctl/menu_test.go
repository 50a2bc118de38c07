package viewctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMenuCoordinator_ToggleIsExclusive(t *testing.T) {
	t.Parallel()

	m := NewMenuCoordinator[int64]()
	assert.False(t, m.IsOpen(1))

	m.Toggle(1)
	assert.True(t, m.IsOpen(1))

	m.Toggle(2)
	assert.False(t, m.IsOpen(1), "opening B closes A")
	assert.True(t, m.IsOpen(2))

	id, ok := m.OpenID()
	assert.True(t, ok)
	assert.Equal(t, int64(2), id)

	m.Toggle(2)
	assert.False(t, m.IsOpen(2))
	_, ok = m.OpenID()
	assert.False(t, ok)
}

func TestMenuCoordinator_CloseClearsAny(t *testing.T) {
	t.Parallel()

	m := NewMenuCoordinator[string]()
	m.Toggle("c-1")
	m.Close()
	assert.False(t, m.IsOpen("c-1"))

	m.Close()
	_, ok := m.OpenID()
	assert.False(t, ok)
}

func TestMenuCoordinator_ZeroKeyIsARealRow(t *testing.T) {
	t.Parallel()

	m := NewMenuCoordinator[int]()
	assert.False(t, m.IsOpen(0), "closed slot does not match the zero key")
	m.Toggle(0)
	assert.True(t, m.IsOpen(0))
}

func TestMenuCoordinator_AtMostOneOpen(t *testing.T) {
	t.Parallel()

	m := NewMenuCoordinator[int]()
	rows := []int{1, 2, 3, 4, 5}
	ops := []int{3, 1, 1, 4, 2, 5, 5, 3}

	for _, op := range ops {
		m.Toggle(op)
		open := 0
		for _, r := range rows {
			if m.IsOpen(r) {
				open++
			}
		}
		assert.LessOrEqual(t, open, 1)
	}
}

func TestMenuCoordinator_Retain(t *testing.T) {
	t.Parallel()

	m := NewMenuCoordinator[int]()
	assert.False(t, m.Retain(nil))

	m.Toggle(7)
	assert.False(t, m.Retain([]int{5, 7, 9}))
	assert.True(t, m.IsOpen(7))

	assert.True(t, m.Retain([]int{5, 9}))
	assert.False(t, m.IsOpen(7))
}

type row struct {
	id       int64
	publicID string
}

func TestKeys_SelectorsAndIndexOf(t *testing.T) {
	t.Parallel()

	rows := []row{{1, "a"}, {2, "b"}, {3, "c"}}
	byID := KeySelector[row, int64](func(r row) int64 { return r.id })
	byPublic := KeySelector[row, string](func(r row) string { return r.publicID })

	assert.Equal(t, []int64{1, 2, 3}, Keys(rows, byID))
	assert.Equal(t, []string{"a", "b", "c"}, Keys(rows, byPublic))
	assert.Equal(t, 1, IndexOf(rows, int64(2), byID))
	assert.Equal(t, 2, IndexOf(rows, "c", byPublic))
	assert.Equal(t, -1, IndexOf(rows, "z", byPublic))
}
