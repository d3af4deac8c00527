package events

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SubscribeUnsubscribe(t *testing.T) {
	r := NewRegistry()
	a, b := NewChannelSink(1), NewChannelSink(1)

	sub := r.Subscribe("42", a)
	require.NotNil(t, sub)
	assert.Equal(t, "42", sub.UserID)
	assert.False(t, sub.ConnectedAt.IsZero())

	assert.Same(t, sub, r.Subscribe("42", a), "resubscribing returns the existing subscriber")
	r.Subscribe("42", b)

	assert.Equal(t, 2, r.Count("42"))
	assert.Equal(t, Stats{ConnectedUsers: 1, TotalSinks: 2}, r.Stats())

	assert.True(t, r.Unsubscribe("42", a))
	assert.False(t, r.Unsubscribe("42", a), "second unsubscribe is a no-op")
	assert.False(t, r.Unsubscribe("7", b), "a sink is only found under its own user")
	assert.Equal(t, 1, r.Count("42"))

	assert.True(t, r.Unsubscribe("42", b))
	assert.Equal(t, Stats{}, r.Stats())
	_, present := r.users["42"]
	assert.False(t, present, "emptied user entry must be removed")
}

func TestRegistry_SinksIsACopy(t *testing.T) {
	r := NewRegistry()
	a := NewChannelSink(1)
	r.Subscribe("42", a)

	sinks := r.Sinks("42")
	r.Unsubscribe("42", a)

	assert.Len(t, sinks, 1)
	assert.Empty(t, r.Sinks("42"))
	assert.NotNil(t, r.Sinks("unknown"))
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	r := NewRegistry()

	const users, perUser = 20, 50
	var wg sync.WaitGroup
	for u := range users {
		userID := fmt.Sprintf("user-%d", u)
		for range perUser {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sink := NewChannelSink(1)
				r.Subscribe(userID, sink)
				_ = r.Sinks(userID)
				_ = r.Stats()
				r.Unsubscribe(userID, sink)
			}()
		}
	}
	wg.Wait()

	assert.Equal(t, Stats{}, r.Stats())
	assert.Empty(t, r.users)
}
