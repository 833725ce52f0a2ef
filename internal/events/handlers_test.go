package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/order"
)

type fakeCreator struct {
	reqs []order.CreateRequest
	meta []EnvelopeMetadata
	err  error
}

func (f *fakeCreator) Create(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
	f.reqs = append(f.reqs, req)
	f.meta = append(f.meta, metadataFrom(ctx))
	if f.err != nil {
		return nil, f.err
	}
	return &order.Order{ID: fmt.Sprintf("order-%d", len(f.reqs))}, nil
}

type fakeCheckpoints struct {
	last map[string]int64
	err  error
}

func newFakeCheckpoints() *fakeCheckpoints {
	return &fakeCheckpoints{last: map[string]int64{}}
}

func (f *fakeCheckpoints) GetLastSequence(ctx context.Context, consumerName, partitionKey string) (int64, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	v, ok := f.last[consumerName+"/"+partitionKey]
	return v, ok, nil
}

func (f *fakeCheckpoints) UpsertLastSequence(ctx context.Context, consumerName, partitionKey string, newSeq int64) error {
	k := consumerName + "/" + partitionKey
	if newSeq > f.last[k] {
		f.last[k] = newSeq
	}
	return nil
}

func envelopedCheckout(seq int) []byte {
	return []byte(fmt.Sprintf(`{"eventName":"CartCheckedOut","eventVersion":1,"eventId":"evt-%d","correlationId":"corr-1",
		"partitionKey":"cart-1","sequence":%d,
		"payload":{"cartId":"cart-1","userId":"C1","items":[{"productId":"P1","quantity":2},{"productId":"P2","quantity":1}]}}`, seq, seq))
}

func TestCartCheckedOutHandler_CreatesOrder(t *testing.T) {
	creator := &fakeCreator{}
	checkpoints := newFakeCheckpoints()
	handle := CartCheckedOutHandler(creator, checkpoints, slog.New(slog.DiscardHandler))

	require.NoError(t, handle(context.Background(), envelopedCheckout(1)))

	require.Len(t, creator.reqs, 1)
	assert.Equal(t, order.CreateRequest{
		CustomerID: "C1",
		Items: []order.RequestItem{
			{ProductID: "P1", Quantity: 2},
			{ProductID: "P2", Quantity: 1},
		},
	}, creator.reqs[0])
	assert.Equal(t, EnvelopeMetadata{CorrelationID: "corr-1", CausationID: "evt-1"}, creator.meta[0])
	assert.Equal(t, int64(1), checkpoints.last[cartCheckedOutConsumerName+"/cart-1"])
}

func TestCartCheckedOutHandler_SkipsDuplicates(t *testing.T) {
	creator := &fakeCreator{}
	checkpoints := newFakeCheckpoints()
	handle := CartCheckedOutHandler(creator, checkpoints, slog.New(slog.DiscardHandler))

	require.NoError(t, handle(context.Background(), envelopedCheckout(1)))
	require.NoError(t, handle(context.Background(), envelopedCheckout(1)))
	require.NoError(t, handle(context.Background(), envelopedCheckout(2)))

	assert.Len(t, creator.reqs, 2)
	assert.Equal(t, int64(2), checkpoints.last[cartCheckedOutConsumerName+"/cart-1"])
}

func TestCartCheckedOutHandler_LegacyPayload(t *testing.T) {
	creator := &fakeCreator{}
	checkpoints := newFakeCheckpoints()
	handle := CartCheckedOutHandler(creator, checkpoints, slog.New(slog.DiscardHandler))

	body := []byte(`{"eventType":"CartCheckedOut","cartId":"cart-9","userId":"C1","items":[{"productId":"P1","quantity":1}]}`)
	require.NoError(t, handle(context.Background(), body))

	require.Len(t, creator.reqs, 1)
	assert.NotEmpty(t, creator.meta[0].CorrelationID)
	assert.Empty(t, checkpoints.last, "legacy messages carry no sequence")
}

func TestCartCheckedOutHandler_Failures(t *testing.T) {
	tests := map[string]struct {
		createErr      error
		wantErr        bool
		wantCheckpoint bool
	}{
		"validation failure is acked": {
			createErr:      &order.ValidationError{Kind: order.InsufficientStock, ProductID: "P1", Quantity: 2},
			wantCheckpoint: true,
		},
		"invalid request is acked": {
			createErr:      fmt.Errorf("%w: at least one item is required", order.ErrInvalidRequest),
			wantCheckpoint: true,
		},
		"infrastructure failure is returned": {
			createErr: errors.New("connection refused"),
			wantErr:   true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			creator := &fakeCreator{err: tc.createErr}
			checkpoints := newFakeCheckpoints()
			handle := CartCheckedOutHandler(creator, checkpoints, slog.New(slog.DiscardHandler))

			err := handle(context.Background(), envelopedCheckout(3))
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			_, ok := checkpoints.last[cartCheckedOutConsumerName+"/cart-1"]
			assert.Equal(t, tc.wantCheckpoint, ok)
		})
	}
}

func TestCartCheckedOutHandler_MalformedBody(t *testing.T) {
	creator := &fakeCreator{}
	handle := CartCheckedOutHandler(creator, newFakeCheckpoints(), slog.New(slog.DiscardHandler))

	require.Error(t, handle(context.Background(), []byte(`{"eventName":"CartCheckedOut","eventVersion":1}`)))
	assert.Empty(t, creator.reqs)
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(multiple, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestSettle(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	ok := &fakeAck{}
	settle(context.Background(), ok, nil, func(context.Context, []byte) error { return nil }, logger)
	assert.True(t, ok.acked)
	assert.False(t, ok.nacked)

	failed := &fakeAck{}
	settle(context.Background(), failed, nil, func(context.Context, []byte) error { return errors.New("boom") }, logger)
	assert.False(t, failed.acked)
	assert.True(t, failed.nacked)
	assert.False(t, failed.requeued)
}
