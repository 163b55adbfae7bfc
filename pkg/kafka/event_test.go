package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]any{"shopper_id": "s-1", "item_count": 3}

	event, err := NewEvent("storefront.cart.updated", "s-1", "cart", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "storefront.cart.updated", event.EventType)
	assert.Equal(t, "s-1", event.AggregateID)
	assert.Equal(t, "cart", event.AggregateType)
	assert.Equal(t, "storefront", event.Source)
	assert.False(t, event.Timestamp.IsZero())
}

func TestNewEventUnmarshalableData(t *testing.T) {
	_, err := NewEvent("storefront.cart.updated", "s-1", "cart", make(chan int))
	assert.Error(t, err)
}

func TestEventRoundTrip(t *testing.T) {
	type cartPayload struct {
		ShopperID string `json:"shopper_id"`
		ItemCount int    `json:"item_count"`
	}

	event, err := NewEvent("storefront.cart.cleared", "s-2", "cart", cartPayload{ShopperID: "s-2"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-1").WithMetadata("origin", "checkout")

	raw, err := event.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "corr-1", decoded.CorrelationID)
	assert.Equal(t, "checkout", decoded.Metadata["origin"])

	var payload cartPayload
	require.NoError(t, decoded.UnmarshalData(&payload))
	assert.Equal(t, "s-2", payload.ShopperID)
}

func TestUnmarshalEventInvalidJSON(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{not json"))
	assert.Error(t, err)
}
