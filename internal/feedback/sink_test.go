package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent(id string, at time.Time, opinion Opinion) Event {
	return Event{ID: id, Name: EventName, URL: "/docs/" + id, Opinion: opinion, Message: "msg " + id, Timestamp: at}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, sink.Deliver(context.Background(), sampleEvent("e1", time.Now(), OpinionGood)))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "on_rate_docs", line["event_name"])
	assert.Equal(t, "/docs/e1", line["url"])
	assert.Equal(t, "good", line["opinion"])
}

func TestMultiSink_FansOutAndJoinsErrors(t *testing.T) {
	ok := &recordingSink{}
	failing := &recordingSink{err: errors.New("boom")}
	m := NewMultiSink(failing, nil, ok)

	assert.Equal(t, "multi(recording,recording)", m.Name())
	err := m.Deliver(context.Background(), sampleEvent("e1", time.Now(), OpinionBad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Len(t, ok.delivered(), 1, "failure in one sink must not skip the others")

	require.NoError(t, m.Close())
	assert.True(t, ok.closed.Load())
	assert.True(t, failing.closed.Load())
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, subject string, data []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.subject = subject
	f.data = data
	if f.err != nil {
		return nil, f.err
	}
	return &jetstream.PubAck{Stream: "FEEDBACK", Sequence: 1}, nil
}

func TestNATSSink_Deliver(t *testing.T) {
	pub := &fakePublisher{}
	sink := &NATSSink{js: pub, subject: "docs.feedback"}

	ev := sampleEvent("e1", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), OpinionGood)
	require.NoError(t, sink.Deliver(context.Background(), ev))

	assert.Equal(t, "docs.feedback", pub.subject)
	var got Event
	require.NoError(t, json.Unmarshal(pub.data, &got))
	assert.Equal(t, ev, got)
	assert.NoError(t, sink.Close())
}

func TestNATSSink_PublishError(t *testing.T) {
	sink := &NATSSink{js: &fakePublisher{err: errors.New("no responders")}, subject: "docs.feedback"}
	err := sink.Deliver(context.Background(), sampleEvent("e1", time.Now(), OpinionGood))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no responders")
}

func TestNewNATSSink_RequiresConfig(t *testing.T) {
	_, err := NewNATSSink(context.Background(), NATSConfig{})
	require.Error(t, err)
}
