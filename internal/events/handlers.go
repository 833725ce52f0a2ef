package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/order"
)

const cartCheckedOutConsumerName = "ordering-cart-checked-out"

// OrderCreator runs the order creation workflow.
type OrderCreator interface {
	Create(ctx context.Context, req order.CreateRequest) (*order.Order, error)
}

// Checkpoints tracks the last processed sequence per partition.
type Checkpoints interface {
	GetLastSequence(ctx context.Context, consumerName, partitionKey string) (int64, bool, error)
	UpsertLastSequence(ctx context.Context, consumerName, partitionKey string, newSeq int64) error
}

// CartCheckedOutHandler turns a checked out cart into an order for the cart's
// user. Requests the workflow rejects are logged and acknowledged since
// redelivery cannot change the outcome; every other failure is returned.
func CartCheckedOutHandler(creator OrderCreator, checkpoints Checkpoints, logger *slog.Logger) HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		payload, env, err := parseCartCheckedOut(body)
		if err != nil {
			return err
		}

		partitionKey := payload.CartID
		var incomingSeq int64
		meta := EnvelopeMetadata{}
		if env != nil {
			partitionKey = env.PartitionKey
			if env.Sequence != nil {
				incomingSeq = *env.Sequence
			}
			meta.CorrelationID = env.CorrelationID
			meta.CausationID = env.EventID
		}
		if meta.CorrelationID == "" {
			meta.CorrelationID = uuid.NewString()
		}

		if incomingSeq != 0 {
			lastSeq, ok, err := checkpoints.GetLastSequence(ctx, cartCheckedOutConsumerName, partitionKey)
			if err != nil {
				return err
			}
			if ok && incomingSeq <= lastSeq {
				logger.Info("skip duplicate cart checkout",
					"cart_id", payload.CartID, "partition", partitionKey, "seq", incomingSeq, "last", lastSeq)
				return nil
			}
			if ok && incomingSeq > lastSeq+1 {
				logger.Warn("sequence gap", "partition", partitionKey, "seq", incomingSeq, "last", lastSeq)
			}
		}

		req := order.CreateRequest{CustomerID: payload.UserID}
		for _, it := range payload.Items {
			req.Items = append(req.Items, order.RequestItem{ProductID: it.ProductID, Quantity: it.Quantity})
		}

		o, err := creator.Create(WithMetadata(ctx, meta), req)
		switch {
		case err == nil:
			logger.Info("created order from cart", "order_id", o.ID, "cart_id", payload.CartID, "customer_id", payload.UserID)
		case isRejected(err):
			logger.Warn("cart checkout rejected", "cart_id", payload.CartID, "customer_id", payload.UserID, "err", err)
		default:
			return err
		}

		if incomingSeq != 0 {
			if err := checkpoints.UpsertLastSequence(ctx, cartCheckedOutConsumerName, partitionKey, incomingSeq); err != nil {
				return err
			}
		}
		return nil
	}
}

func isRejected(err error) bool {
	var verr *order.ValidationError
	return errors.As(err, &verr) || errors.Is(err, order.ErrInvalidRequest)
}
