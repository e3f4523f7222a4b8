package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/featgate/internal/event"
)

func TestEmitter_DeliversToAllSubscribers(t *testing.T) {
	var e event.Emitter[int]

	var a, b []int
	e.Subscribe(func(v int) { a = append(a, v) })
	e.Subscribe(func(v int) { b = append(b, v) })

	e.Emit(1)
	e.Emit(2)

	assert.Equal(t, []int{1, 2}, a)
	assert.Equal(t, []int{1, 2}, b)
}

func TestEmitter_Unsubscribe(t *testing.T) {
	var e event.Emitter[string]

	var got []string
	sub := e.Subscribe(func(v string) { got = append(got, v) })

	e.Emit("before")
	sub.Unsubscribe()
	sub.Unsubscribe() // safe to repeat
	e.Emit("after")

	assert.Equal(t, []string{"before"}, got)
}

func TestEmitter_EmitWithNoSubscribers(t *testing.T) {
	var e event.Emitter[struct{}]
	assert.NotPanics(t, func() { e.Emit(struct{}{}) })
}

func TestEmitter_ReentrantUnsubscribe(t *testing.T) {
	var e event.Emitter[int]

	count := 0
	var sub *event.Subscription
	sub = e.Subscribe(func(int) {
		count++
		sub.Unsubscribe()
	})

	e.Emit(1)
	e.Emit(2)

	assert.Equal(t, 1, count)
}
