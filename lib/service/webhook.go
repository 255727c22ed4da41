package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/terracapital/marketplace/common"
	"github.com/terracapital/marketplace/db/models"
)

func (svc *MarketService) StartWebhookSubscription(ctx context.Context, url string) {
	svc.Logger.Infof("Starting webhook subscription with webhook url %s", url)
	purchases := make(chan models.Purchase, 100)
	subId := svc.PurchasePubSub.Subscribe(common.PurchaseTopic, purchases)
	defer svc.PurchasePubSub.Unsubscribe(subId, common.PurchaseTopic)
	client := &http.Client{Timeout: 10 * time.Second}
	for {
		select {
		case <-ctx.Done():
			return
		case purchase := <-purchases:
			svc.postToWebhook(ctx, client, url, purchase)
		}
	}
}

func (svc *MarketService) postToWebhook(ctx context.Context, client *http.Client, url string, purchase models.Purchase) {
	payload := new(bytes.Buffer)
	err := json.NewEncoder(payload).Encode(purchase)
	if err != nil {
		svc.Logger.Error(err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, payload)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			svc.Logger.Error(err)
		}
		svc.Logger.Errorf("Webhook status code was %d, body: %s", resp.StatusCode, msg)
	}
}

// SubscribePurchases is handed to the rabbitmq publisher.
func (svc *MarketService) SubscribePurchases() (chan models.Purchase, func(), error) {
	purchases := make(chan models.Purchase, 100)
	subId := svc.PurchasePubSub.Subscribe(common.PurchaseTopic, purchases)
	return purchases, func() { svc.PurchasePubSub.Unsubscribe(subId, common.PurchaseTopic) }, nil
}

// EncodePurchase writes the rabbitmq payload of a purchase.
func (svc *MarketService) EncodePurchase(ctx context.Context, w io.Writer, purchase models.Purchase) error {
	return json.NewEncoder(w).Encode(purchase)
}
