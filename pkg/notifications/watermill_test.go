package notifications

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoChannelDispatcher_DeliversToSubscriber(t *testing.T) {
	dispatcher := NewGoChannelDispatcher(slog.Default())
	defer dispatcher.Close()

	messages, err := dispatcher.Subscribe(t.Context())
	require.NoError(t, err)

	sent := Notification{
		Kind:       OfferSent,
		EntityID:   "off-1",
		Recipient:  "applicant-1",
		Detail:     "Backend Engineer",
		OccurredAt: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, dispatcher.Dispatch(t.Context(), sent))

	select {
	case msg := <-messages:
		msg.Ack()

		assert.Equal(t, string(OfferSent), msg.Metadata.Get(KindMetadataKey))

		var got Notification
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, sent, got)
	case <-time.After(time.Second):
		t.Fatal("no notification delivered")
	}
}

func TestNopDispatcher(t *testing.T) {
	var d NopDispatcher

	require.NoError(t, d.Dispatch(t.Context(), Notification{Kind: OfferExpired, EntityID: "off-1"}))
	require.NoError(t, d.Close())
}
