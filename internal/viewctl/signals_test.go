package viewctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignals_SubscribeEmitUnsubscribe(t *testing.T) {
	t.Parallel()

	hub := NewSignals()
	var got []string

	unA := hub.Subscribe(SignalFocus, func() { got = append(got, "a") })
	hub.Subscribe(SignalFocus, func() { got = append(got, "b") })
	hub.Subscribe(SignalHidden, func() { got = append(got, "hidden") })

	hub.Emit(SignalFocus)
	assert.Equal(t, []string{"a", "b"}, got)

	unA()
	unA()
	got = nil
	hub.Emit(SignalFocus)
	assert.Equal(t, []string{"b"}, got)
	assert.Equal(t, 1, hub.Len(SignalFocus))
}

func TestSignals_UnsubscribeDuringEmit(t *testing.T) {
	t.Parallel()

	hub := NewSignals()
	calls := 0
	var unB func()
	hub.Subscribe(SignalVisible, func() {
		calls++
		unB()
	})
	unB = hub.Subscribe(SignalVisible, func() { calls++ })

	hub.Emit(SignalVisible)
	assert.Equal(t, 2, calls, "snapshot taken when Emit started")

	hub.Emit(SignalVisible)
	assert.Equal(t, 3, calls)
}

func TestSignals_NilHandler(t *testing.T) {
	t.Parallel()

	hub := NewSignals()
	un := hub.Subscribe(SignalHidden, nil)
	assert.Zero(t, hub.Len(SignalHidden))
	assert.NotPanics(t, func() {
		un()
		hub.Emit(SignalHidden)
	})
}

func TestSignal_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "visible", SignalVisible.String())
	assert.Equal(t, "focus", SignalFocus.String())
	assert.Equal(t, "unknown", Signal(42).String())
}

func TestReturnFlag(t *testing.T) {
	t.Parallel()

	var f ReturnFlag
	assert.False(t, f.Consume())
	f.Set()
	assert.True(t, f.Pending())
	assert.True(t, f.Consume())
	assert.False(t, f.Pending())
	assert.False(t, f.Consume())
}
