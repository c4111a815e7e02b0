package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNewDeliveryOrder(t *testing.T) {
	pending := &Order{PickupOption: "delivery", DeliveryStatus: "pending"}
	upcoming := &Order{PickupOption: "delivery", DeliveryStatus: "upcoming", UserName: "Ali"}

	tests := []struct {
		name   string
		change Change[Order]
		want   bool
	}{
		{"pending to upcoming", Change[Order]{Before: pending, After: upcoming}, true},
		{"pickup order", Change[Order]{Before: pending, After: &Order{PickupOption: "pickup", DeliveryStatus: "upcoming"}}, false},
		{"already upcoming", Change[Order]{Before: upcoming, After: upcoming}, false},
		{"to delivered", Change[Order]{Before: pending, After: &Order{PickupOption: "delivery", DeliveryStatus: "delivered"}}, false},
		{"missing before", Change[Order]{After: upcoming}, false},
		{"missing after", Change[Order]{Before: pending}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNewDeliveryOrder(tt.change))
		})
	}
}

func TestNewOrderMessage(t *testing.T) {
	msg := NewOrderMessage(&Order{UserName: "Sara"})

	assert.Equal(t, "New Order!", msg.Title)
	assert.Equal(t, `New Delivery Order from "Sara" has been added.`, msg.Body)
	assert.Equal(t, map[string]string{"routeLocation": "/home"}, msg.Data)
}
