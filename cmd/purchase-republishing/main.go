package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/terracapital/marketplace/common"
	"github.com/terracapital/marketplace/db"
	"github.com/terracapital/marketplace/db/models"
	"github.com/terracapital/marketplace/lib"
	"github.com/terracapital/marketplace/lib/service"
	"github.com/terracapital/marketplace/rabbitmq"
)

// Republishes journaled purchases between START_DATE and END_DATE (RFC3339) to the
// purchase exchange, for consumers that missed them. DRY_RUN=true only lists them.
func main() {

	c := &service.Config{}
	// Load configruation from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	logger := lib.Logger(c.LogFilePath)
	startDate, endDate, err := loadStartAndEndDateFromEnv()
	if err != nil {
		logger.Fatalf("Could not load start and end date from env %v", err)
	}
	err = envconfig.Process("", c)
	if err != nil {
		logger.Fatalf("Error loading environment variables: %v", err)
	}
	// Open a DB connection based on the configured DATABASE_URI
	dbConn, err := db.Open(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}
	amqpClient, err := rabbitmq.DialAMQP(c.RabbitMQUri, rabbitmq.WithAmqpLogger(logger))
	if err != nil {
		logger.Fatal(err)
	}

	rabbitmqClient, err := rabbitmq.NewClient(amqpClient,
		rabbitmq.WithLogger(logger),
		rabbitmq.WithPurchaseExchange(c.RabbitMQPurchaseExchange),
	)
	if err != nil {
		logger.Fatal(err)
	}

	// close the connection gently at the end of the runtime
	defer rabbitmqClient.Close()

	result := []models.Purchase{}
	err = dbConn.NewSelect().Model(&result).
		Where("created_at > ?", startDate).
		Where("created_at < ?", endDate).
		Order("created_at ASC").
		Scan(context.Background())
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infof("Found %d purchases", len(result))

	pubsub := service.NewPubsub()
	purchases := make(chan models.Purchase, len(result)+1)
	subId := pubsub.Subscribe(common.PurchaseTopic, purchases)
	subscribe := func() (chan models.Purchase, func(), error) {
		return purchases, func() { pubsub.Unsubscribe(subId, common.PurchaseTopic) }, nil
	}
	svc := &service.MarketService{Config: c, DB: dbConn, Logger: logger, PurchasePubSub: pubsub}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		err := rabbitmqClient.StartPublishPurchases(ctx, subscribe, svc.EncodePurchase)
		if err != nil && err != context.Canceled {
			logger.Error(err)
		}
		logger.Info("Rabbit purchase publisher done")
		close(done)
	}()

	dryRun := os.Getenv("DRY_RUN") == "true"
	for _, p := range result {
		logger.Infof("Publishing purchase %s of asset %d", p.ID, p.AssetID)
		if dryRun {
			continue
		}
		pubsub.Publish(common.PurchaseTopic, p)
	}
	// let the publisher drain the channel
	for len(purchases) > 0 {
		time.Sleep(100 * time.Millisecond)
	}
	time.Sleep(time.Second)
	cancel()
	<-done
	logger.Infof("Published %d purchases", len(result))
}

func loadStartAndEndDateFromEnv() (start, end time.Time, err error) {
	start, err = time.Parse(time.RFC3339, os.Getenv("START_DATE"))
	if err != nil {
		return
	}
	end, err = time.Parse(time.RFC3339, os.Getenv("END_DATE"))
	return
}
