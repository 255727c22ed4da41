package rabbitmq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/terracapital/marketplace/db/models"
	"github.com/ziflex/lecho/v3"
)

//go:generate mockgen -destination=./mock_rabbitmq/rabbitmq.go github.com/terracapital/marketplace/rabbitmq AMQPClient

// bufPool reuses the buffers purchases are encoded into. Sequential publishing keeps a
// single buffer in the pool.
var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

const (
	contentTypeJSON = "application/json"
)

type (
	SubscribeToPurchasesFunc = func() (purchases chan models.Purchase, unsubscribe func(), err error)
	EncodePurchaseFunc       = func(ctx context.Context, w io.Writer, purchase models.Purchase) error
)

type Client interface {
	StartPublishPurchases(context.Context, SubscribeToPurchasesFunc, EncodePurchaseFunc) error
	// Close will close all connections to rabbitmq
	Close() error
}

type DefaultClient struct {
	amqpClient AMQPClient

	logger *lecho.Logger

	purchaseExchange string
}

type ClientOption = func(client *DefaultClient)

func WithPurchaseExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.purchaseExchange = exchange
	}
}

func WithLogger(logger *lecho.Logger) ClientOption {
	return func(client *DefaultClient) {
		client.logger = logger
	}
}

func NewClient(amqpClient AMQPClient, options ...ClientOption) (*DefaultClient, error) {
	client := &DefaultClient{
		amqpClient: amqpClient,

		logger: lecho.New(
			os.Stdout,
			lecho.WithLevel(log.DEBUG),
			lecho.WithTimestamp(),
		),

		purchaseExchange: "marketplace_purchase",
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

func (client *DefaultClient) Close() error { return client.amqpClient.Close() }

// RoutingKey of a committed purchase, e.g. purchase.7.completed.
func RoutingKey(purchase models.Purchase) string {
	return fmt.Sprintf("purchase.%d.%s", purchase.AssetID, purchase.State)
}

func (client *DefaultClient) StartPublishPurchases(ctx context.Context, subscribeFunc SubscribeToPurchasesFunc, payloadFunc EncodePurchaseFunc) error {
	err := client.amqpClient.ExchangeDeclare(
		client.purchaseExchange,
		// topic is a type of exchange that allows routing messages to different queue's bases on a routing key
		"topic",
		// Durable and Non-Auto-Deleted exchanges will survive server restarts and remain
		// declared when there are no remaining bindings.
		true,
		false,
		// Non-Internal exchange's accept direct publishing
		false,
		// Nowait: We set this to false as we want to wait for a server response
		// to check whether the exchange was created succesfully
		false,
		nil,
	)
	if err != nil {
		return err
	}

	client.logger.Info("Starting rabbitmq publisher")

	purchases, unsubscribe, err := subscribeFunc()
	if err != nil {
		return err
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case purchase := <-purchases:
			err = client.publishPurchase(ctx, purchase, payloadFunc)
			if err != nil {
				captureErr(client.logger, err)
			}
		}
	}
}

func (client *DefaultClient) publishPurchase(ctx context.Context, purchase models.Purchase, payloadFunc EncodePurchaseFunc) error {
	payload := bufPool.Get().(*bytes.Buffer)
	payload.Reset()
	defer bufPool.Put(payload)

	err := payloadFunc(ctx, payload, purchase)
	if err != nil {
		return err
	}

	err = client.amqpClient.PublishWithContext(ctx,
		client.purchaseExchange,
		RoutingKey(purchase),
		false,
		false,
		amqp.Publishing{
			ContentType: contentTypeJSON,
			Body:        payload.Bytes(),
		},
	)
	if err != nil {
		return err
	}

	client.logger.Debugf("Successfully published purchase %s of asset %d to rabbitmq", purchase.ID, purchase.AssetID)

	return nil
}

func captureErr(logger *lecho.Logger, err error) {
	logger.Error(err)
	sentry.CaptureException(err)
}
