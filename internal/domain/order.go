package domain

import "fmt"

// Order pickup options and delivery statuses the notifier inspects.
const (
	PickupOptionDelivery = "delivery"

	DeliveryStatusPending  = "pending"
	DeliveryStatusUpcoming = "upcoming"
)

// RouteHome is the client route opened by a new order notification.
const RouteHome = "/home"

// Order is the subset of an order document the notifier reads.
type Order struct {
	ID             string `json:"id"`
	PickupOption   string `json:"pickupOption"`
	DeliveryStatus string `json:"deliveryStatus"`
	UserName       string `json:"userName"`
}

// IsNewDeliveryOrder reports whether an update moved a delivery order from
// pending to upcoming.
func IsNewDeliveryOrder(c Change[Order]) bool {
	if c.Before == nil || c.After == nil {
		return false
	}
	return c.After.PickupOption == PickupOptionDelivery &&
		c.After.DeliveryStatus == DeliveryStatusUpcoming &&
		c.Before.DeliveryStatus == DeliveryStatusPending
}

// NewOrderMessage builds the topic notification announcing a delivery order.
func NewOrderMessage(o *Order) TopicMessage {
	return TopicMessage{
		Title: "New Order!",
		Body:  fmt.Sprintf("New Delivery Order from \"%s\" has been added.", o.UserName),
		Data:  map[string]string{"routeLocation": RouteHome},
	}
}
