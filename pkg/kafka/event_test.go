package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic(t *testing.T) {
	assert.Equal(t, "deliverzler.orders.updated", Topic("orders", "updated"))
	assert.Equal(t, "deliverzler.store_reviews.written", Topic("store_reviews", "written"))
}

func TestNewEvent_RoundTrip(t *testing.T) {
	payload := map[string]any{"after": map[string]any{"storeId": "s1", "rating": 4}}
	event, err := NewEvent("store_review.written", "r1", "store_review", "deliverzler-functions", payload)
	require.NoError(t, err)
	event.WithCorrelationID("corr-1").WithMetadata("origin", "test")

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, 1, event.Version)

	raw, err := event.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "corr-1", decoded.CorrelationID)
	assert.Equal(t, "test", decoded.Metadata["origin"])

	var data struct {
		After struct {
			StoreID string `json:"storeId"`
		} `json:"after"`
	}
	require.NoError(t, decoded.UnmarshalData(&data))
	assert.Equal(t, "s1", data.After.StoreID)
}

func TestUnmarshalEvent_InvalidJSON(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{not json"))
	assert.Error(t, err)
}

func TestUnmarshalData_Empty(t *testing.T) {
	e := &Event{EventID: "e1"}
	err := e.UnmarshalData(&struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "e1")
}
