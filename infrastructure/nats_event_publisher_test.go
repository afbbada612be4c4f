package infrastructure

import (
	"encoding/json"
	"testing"

	"vnclub/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectForEvent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "vnclub.points.changed", subjectForEvent(events.PointsChangedEvent{}))
	assert.Equal(t, "vnclub.tiers.changed", subjectForEvent(events.TiersChangedEvent{}))
}

func TestEventEnvelope_RoundTrip(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(events.PointsChangedEvent{
		EventID:  7,
		GuildID:  1,
		UserID:   42,
		Amount:   5,
		NewTotal: 12,
		Category: "vn_completion",
	})
	require.NoError(t, err)

	envelope := eventEnvelope{
		EventID:       "test-id",
		EventType:     string(events.EventTypePointsChanged),
		SourceService: "vnclub",
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	require.NoError(t, err)

	var decoded eventEnvelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "points_changed", decoded.EventType)
	assert.Equal(t, "vnclub", decoded.SourceService)

	var inner events.PointsChangedEvent
	require.NoError(t, json.Unmarshal(decoded.Payload, &inner))
	assert.Equal(t, int64(42), inner.UserID)
	assert.Equal(t, int64(12), inner.NewTotal)
}
