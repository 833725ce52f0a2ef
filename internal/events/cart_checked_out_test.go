package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCartCheckedOut(t *testing.T) {
	tests := map[string]struct {
		body      string
		wantCart  string
		wantUser  string
		wantItems int
		wantEnv   bool
		wantErr   string
	}{
		"enveloped": {
			body: `{"eventName":"CartCheckedOut","eventVersion":1,"eventId":"e1","partitionKey":"cart-1","sequence":2,
				"payload":{"cartId":"cart-1","userId":"C1","items":[{"productId":"P1","quantity":2}]}}`,
			wantCart:  "cart-1",
			wantUser:  "C1",
			wantItems: 1,
			wantEnv:   true,
		},
		"legacy": {
			body:      `{"eventType":"CartCheckedOut","cartId":"cart-2","userId":"C2","items":[{"productId":"P1","quantity":1,"price":9.5}]}`,
			wantCart:  "cart-2",
			wantUser:  "C2",
			wantItems: 1,
		},
		"wrong version": {
			body:    `{"eventName":"CartCheckedOut","eventVersion":2,"partitionKey":"cart-1","payload":{"cartId":"cart-1","userId":"C1"}}`,
			wantErr: "invalid envelope",
		},
		"enveloped without user": {
			body:    `{"eventName":"CartCheckedOut","eventVersion":1,"partitionKey":"cart-1","payload":{"cartId":"cart-1"}}`,
			wantErr: "missing cartId or userId",
		},
		"legacy without cart": {
			body:    `{"userId":"C1"}`,
			wantErr: "missing cartId or userId",
		},
		"not json": {
			body:    `nope`,
			wantErr: "unmarshal legacy CartCheckedOut",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			payload, env, err := parseCartCheckedOut([]byte(tc.body))
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantCart, payload.CartID)
			assert.Equal(t, tc.wantUser, payload.UserID)
			assert.Len(t, payload.Items, tc.wantItems)
			assert.Equal(t, tc.wantEnv, env != nil)
		})
	}
}
