package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownCallback is returned for inline-button data that names no fulfilment step.
var ErrUnknownCallback = errors.New("unknown fulfilment callback")

// callbackSteps maps the inline-button prefix to the status the order moves to.
var callbackSteps = map[string]OrderStatus{
	"pending": OrderStatusProcessed,
	"process": OrderStatusDelivered,
	"deliver": OrderStatusDelivered,
}

// ParseFulfilmentCallback decodes button data of the form "<step>_<orderID>".
func ParseFulfilmentCallback(data string) (int64, OrderStatus, error) {
	prefix, rawID, ok := strings.Cut(strings.TrimSpace(data), "_")
	if !ok {
		return 0, "", ErrUnknownCallback
	}
	next, known := callbackSteps[prefix]
	if !known {
		return 0, "", ErrUnknownCallback
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", ErrUnknownCallback
	}
	return id, next, nil
}

// FulfilmentCallback returns the data for the button that advances o one step.
// Delivered orders have no further step.
func FulfilmentCallback(o Order) (string, bool) {
	switch o.Status {
	case OrderStatusPending:
		return fmt.Sprintf("pending_%d", o.ID), true
	case OrderStatusProcessed:
		return fmt.Sprintf("deliver_%d", o.ID), true
	default:
		return "", false
	}
}
