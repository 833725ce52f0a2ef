package events

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	cartCheckedOutEventName    = "CartCheckedOut"
	cartCheckedOutEventVersion = 1
)

// CartItem is the item shape published by the cart service. Price is ignored
// here; orders always take the current catalog price.
type CartItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price,omitempty"`
}

// CartCheckedOut is the legacy bare message.
type CartCheckedOut struct {
	EventType string     `json:"eventType"`
	CartID    string     `json:"cartId"`
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	Timestamp time.Time  `json:"timestamp"`
}

// CartCheckedOutPayload represents the v1 payload schema.
type CartCheckedOutPayload struct {
	CartID    string     `json:"cartId"`
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	Timestamp time.Time  `json:"timestamp"`
}

// CartCheckedOutEnvelope is the enveloped event structure.
type CartCheckedOutEnvelope = EventEnvelope[CartCheckedOutPayload]

// parseCartCheckedOut tries the v1 envelope first and falls back to the legacy
// bare payload. The envelope is nil for legacy messages.
func parseCartCheckedOut(body []byte) (CartCheckedOutPayload, *CartCheckedOutEnvelope, error) {
	var env CartCheckedOutEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.EventName != "" {
		if err := env.Validate(cartCheckedOutEventName, cartCheckedOutEventVersion); err != nil {
			return CartCheckedOutPayload{}, nil, fmt.Errorf("invalid envelope: %w", err)
		}
		if env.Payload.CartID == "" || env.Payload.UserID == "" {
			return CartCheckedOutPayload{}, nil, fmt.Errorf("invalid payload: missing cartId or userId")
		}
		return env.Payload, &env, nil
	}

	var legacy CartCheckedOut
	if err := json.Unmarshal(body, &legacy); err != nil {
		return CartCheckedOutPayload{}, nil, fmt.Errorf("unmarshal legacy CartCheckedOut: %w", err)
	}

	payload := CartCheckedOutPayload{
		CartID:    legacy.CartID,
		UserID:    legacy.UserID,
		Items:     legacy.Items,
		Timestamp: legacy.Timestamp,
	}
	if payload.CartID == "" || payload.UserID == "" {
		return CartCheckedOutPayload{}, nil, fmt.Errorf("invalid payload: missing cartId or userId")
	}

	return payload, nil, nil
}
