package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusShipped, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusShipped, false},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusShipped, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderStatusPending.Valid())
	assert.True(t, OrderStatusShipped.Valid())
	assert.True(t, OrderStatusCancelled.Valid())
	assert.False(t, OrderStatus("unknown").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderTotal(t *testing.T) {
	order := &Order{
		Items: []OrderItem{
			{Quantity: 2, PriceAtOrder: decimal.RequireFromString("10.50")},
			{Quantity: 1, PriceAtOrder: decimal.RequireFromString("0.99")},
		},
	}
	assert.Equal(t, "21.99", order.Total().StringFixed(2))

	empty := &Order{}
	assert.True(t, empty.Total().IsZero())
}
