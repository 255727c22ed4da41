package rabbitmq_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terracapital/marketplace/common"
	"github.com/terracapital/marketplace/db/models"
	"github.com/terracapital/marketplace/rabbitmq"
	"github.com/terracapital/marketplace/rabbitmq/mock_rabbitmq"
)

func encode(ctx context.Context, w io.Writer, purchase models.Purchase) error {
	return json.NewEncoder(w).Encode(purchase)
}

func TestRoutingKey(t *testing.T) {
	key := rabbitmq.RoutingKey(models.Purchase{AssetID: 7, State: common.PurchaseStateCompleted})
	assert.Equal(t, "purchase.7.completed", key)
}

func TestStartPublishPurchases(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	amqpClient := mock_rabbitmq.NewMockAMQPClient(ctrl)
	client, err := rabbitmq.NewClient(amqpClient, rabbitmq.WithPurchaseExchange("test_purchase"))
	require.NoError(t, err)

	purchase := models.Purchase{
		ID:        "0d3c6a6e-7b55-4b8e-9f37-1d6e2f1a6a10",
		AssetID:   3,
		Buyer:     "buyer",
		Seller:    "seller",
		Quantity:  decimal.NewFromInt(10),
		TotalPaid: decimal.NewFromInt(1000),
		FeePaid:   decimal.NewFromInt(25),
		State:     common.PurchaseStateCompleted,
	}

	published := make(chan amqp.Publishing, 1)
	amqpClient.EXPECT().
		ExchangeDeclare(gomock.Eq("test_purchase"), gomock.Eq("topic"), true, false, false, false, gomock.Nil()).
		Times(1).
		Return(nil)
	amqpClient.EXPECT().
		PublishWithContext(gomock.Any(), gomock.Eq("test_purchase"), gomock.Eq("purchase.3.completed"), false, false, gomock.Any()).
		Times(1).
		DoAndReturn(func(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
			published <- msg
			return nil
		})

	purchases := make(chan models.Purchase, 1)
	unsubscribed := make(chan struct{})
	subscribe := func() (chan models.Purchase, func(), error) {
		return purchases, func() { close(unsubscribed) }, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- client.StartPublishPurchases(ctx, subscribe, encode)
	}()

	purchases <- purchase
	select {
	case msg := <-published:
		assert.Equal(t, "application/json", msg.ContentType)
		var got models.Purchase
		require.NoError(t, json.Unmarshal(msg.Body, &got))
		assert.Equal(t, purchase.ID, got.ID)
		assert.True(t, got.TotalPaid.Equal(purchase.TotalPaid))
	case <-time.After(5 * time.Second):
		t.Fatal("purchase was not published")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	<-unsubscribed
}

func TestStartPublishPurchasesExchangeError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	amqpClient := mock_rabbitmq.NewMockAMQPClient(ctrl)
	client, err := rabbitmq.NewClient(amqpClient)
	require.NoError(t, err)

	amqpClient.EXPECT().
		ExchangeDeclare(gomock.Eq("marketplace_purchase"), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(amqp.ErrClosed)

	err = client.StartPublishPurchases(context.Background(), func() (chan models.Purchase, func(), error) {
		t.Fatal("subscribed before the exchange was declared")
		return nil, nil, nil
	}, encode)
	assert.ErrorIs(t, err, amqp.ErrClosed)
}
