package events

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/pathway-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingSink rejects every send.
type failingSink struct {
	closed bool
}

func (f *failingSink) Send(Event) error { return ErrSinkClosed }
func (f *failingSink) Close()           { f.closed = true }

func newTestBroadcaster() (*Registry, *Broadcaster) {
	r := NewRegistry()
	return r, NewBroadcaster(r, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func drain(s *ChannelSink) []Event {
	var out []Event
	for {
		select {
		case ev := <-s.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestBroadcaster_FanOut(t *testing.T) {
	r, b := newTestBroadcaster()
	u1, u2, u3 := NewChannelSink(4), NewChannelSink(4), NewChannelSink(4)
	other := NewChannelSink(4)
	r.Subscribe("U", u1)
	r.Subscribe("U", u2)
	r.Subscribe("U", u3)
	r.Subscribe("V", other)

	delivered, err := b.Publish(context.Background(), "U", "x", map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, 3, delivered)

	for _, s := range []*ChannelSink{u1, u2, u3} {
		got := drain(s)
		require.Len(t, got, 1)
		assert.Equal(t, "x", got[0].Name)
		assert.JSONEq(t, `{"n":1}`, string(got[0].Data))
	}
	assert.Empty(t, drain(other))
}

func TestBroadcaster_FailedSinkIsRemoved(t *testing.T) {
	recorder, log := mocks.NewLogRecorder()
	r := NewRegistry()
	b := NewBroadcaster(r, log)
	good := NewChannelSink(4)
	bad := &failingSink{}
	r.Subscribe("U", good)
	r.Subscribe("U", bad)

	delivered, err := b.Publish(context.Background(), "U", "refresh", "payload")
	require.NoError(t, err)

	assert.Equal(t, 1, delivered)
	assert.True(t, bad.closed)
	assert.Equal(t, 1, r.Count("U"))
	assert.Len(t, drain(good), 1)

	entry, ok := recorder.Find(slog.LevelWarn, "dropped sink")
	require.True(t, ok)
	assert.Equal(t, "U", entry.Attrs["user_id"])
}

func TestBroadcaster_FullSinkIsDisconnected(t *testing.T) {
	r, b := newTestBroadcaster()
	slow := NewChannelSink(1)
	r.Subscribe("U", slow)
	ctx := context.Background()

	n, err := b.Publish(ctx, "U", "a", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = b.Publish(ctx, "U", "b", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, Stats{}, r.Stats())

	select {
	case <-slow.Done():
	default:
		t.Fatal("full sink should have been closed")
	}
}

func TestBroadcaster_PreservesOrderPerSink(t *testing.T) {
	r, b := newTestBroadcaster()
	s := NewChannelSink(8)
	r.Subscribe("U", s)

	for _, name := range []string{"one", "two", "three"} {
		_, err := b.Publish(context.Background(), "U", name, nil)
		require.NoError(t, err)
	}

	var names []string
	for _, ev := range drain(s) {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"one", "two", "three"}, names)
}

func TestBroadcaster_NoSinks(t *testing.T) {
	_, b := newTestBroadcaster()

	n, err := b.Publish(context.Background(), "nobody", "refresh", struct{}{})
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestBroadcaster_MarshalError(t *testing.T) {
	r, b := newTestBroadcaster()
	r.Subscribe("U", NewChannelSink(1))

	_, err := b.Publish(context.Background(), "U", "bad", make(chan int))
	assert.Error(t, err)
	assert.Equal(t, 1, r.Count("U"), "a marshal failure is not a sink failure")
}

func TestChannelSink_SendAfterClose(t *testing.T) {
	s := NewChannelSink(1)
	s.Close()
	s.Close()

	assert.ErrorIs(t, s.Send(Event{Name: "x"}), ErrSinkClosed)
}
