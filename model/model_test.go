package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryKeyNormalization(t *testing.T) {
	// The ERP decodes ids as float64, the chain stores string keys. Both must
	// normalize to the same representation.
	assert.Equal(t, "1024", DeliveryKey(float64(1024)))
	assert.Equal(t, "1024", DeliveryKey("1024"))
	assert.Equal(t, "1024", DeliveryKey(" 1024 "))
	assert.Equal(t, "1024", DeliveryKey(1024))
	assert.Equal(t, "1024", DeliveryKey(int64(1024)))
	assert.Equal(t, "1024", DeliveryKey(json.Number("1024")))
}

func TestPayloadRoundTrip(t *testing.T) {
	order := Order{
		Client:       "ACME Ltda",
		CNPJ:         "12.345.678/0001-90",
		TimestampUTC: "2025-01-10T12:00:00Z",
		Items:        []OrderItem{{Code: "PA 00950", Model: "Basic", Size: "M", Quantity: 3}},
		Status:       OrderStatusAwaitingReview,
	}
	payload, err := ToPayload(order)
	assert.NoError(t, err)
	assert.Equal(t, OrderStatusAwaitingReview, payload["status"])

	var decoded Order
	assert.NoError(t, FromPayload(payload, &decoded))
	assert.Equal(t, order.Client, decoded.Client)
	assert.Equal(t, order.Items, decoded.Items)
	// Zero-valued optional fields must not leak into the wire document.
	_, hasReason := payload["rejection_reason"]
	assert.False(t, hasReason)
}

func TestCatalogInventoryKey(t *testing.T) {
	catalog := Catalog{
		{
			ProductGroup: "Camiseta Polo",
			InitialStock: 100,
			Variants: []CatalogVariant{
				{Code: "PA 00950", Model: "Polo", Size: "P"},
				{Code: "PA 00951", Model: "Polo", Size: "M"},
				{Code: "PA 00952", Model: "Polo", Size: "G"},
			},
		},
		{
			ProductGroup: "Calça Jeans",
			InitialStock: 40,
			Variants: []CatalogVariant{
				{Code: "PB 00100", Model: "Jeans", Size: "38"},
			},
		},
	}

	// Every variant of a group resolves to the group's first variant.
	for _, code := range []string{"PA 00950", "PA 00951", "PA 00952"} {
		key, ok := catalog.InventoryKey(code)
		assert.True(t, ok)
		assert.Equal(t, "PA 00950", key)
	}

	key, ok := catalog.InventoryKey("PB 00100")
	assert.True(t, ok)
	assert.Equal(t, "PB 00100", key)

	_, ok = catalog.InventoryKey("unknown")
	assert.False(t, ok)

	group, ok := catalog.GroupFor("PA 00952")
	assert.True(t, ok)
	assert.Equal(t, "Camiseta Polo", group.ProductGroup)
}
