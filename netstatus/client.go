// Package netstatus reads the health of the Stellar networks from their Horizon root
// endpoint.
package netstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ziflex/lecho/v3"
)

const (
	Testnet = "testnet"
	Public  = "public"
)

type Health struct {
	Network                string `json:"network"`
	HorizonVersion         string `json:"horizon_version"`
	CoreVersion            string `json:"core_version"`
	CurrentProtocolVersion int32  `json:"current_protocol_version"`
	HistoryLatestLedger    int64  `json:"history_latest_ledger"`
	FetchedAtUnixMs        int64  `json:"fetched_at_unix_ms"`
}

type horizonRoot struct {
	HorizonVersion         string `json:"horizon_version"`
	CoreVersion            string `json:"core_version"`
	CurrentProtocolVersion int32  `json:"current_protocol_version"`
	HistoryLatestLedger    int64  `json:"history_latest_ledger"`
}

type Client struct {
	http       *http.Client
	urls       map[string]string
	logger     *lecho.Logger
	maxElapsed time.Duration
}

func NewClient(testnetURL, publicURL string, logger *lecho.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: 12 * time.Second},
		urls: map[string]string{
			Testnet: testnetURL,
			Public:  publicURL,
		},
		logger:     logger,
		maxElapsed: 20 * time.Second,
	}
}

// Fetch reads the Horizon root of network. Transport errors and 5xx answers are retried
// with exponential backoff, other answers fail at once.
func (c *Client) Fetch(ctx context.Context, network string) (*Health, error) {
	url, ok := c.urls[network]
	if !ok {
		return nil, fmt.Errorf("unknown network %q", network)
	}

	expontentialBackoff := backoff.NewExponentialBackOff()
	expontentialBackoff.MaxInterval = time.Second * 5
	expontentialBackoff.MaxElapsedTime = c.maxElapsed

	var root horizonRoot
	err := backoff.RetryNotify(func() error {
		return c.get(ctx, url, &root)
	}, backoff.WithContext(expontentialBackoff, ctx), func(err error, wait time.Duration) {
		c.logger.Warnf("Horizon %s not reachable, retrying in %s: %v", network, wait, err)
	})
	if err != nil {
		return nil, err
	}

	return &Health{
		Network:                network,
		HorizonVersion:         root.HorizonVersion,
		CoreVersion:            root.CoreVersion,
		CurrentProtocolVersion: root.CurrentProtocolVersion,
		HistoryLatestLedger:    root.HistoryLatestLedger,
		FetchedAtUnixMs:        time.Now().UnixMilli(),
	}, nil
}

func (c *Client) get(ctx context.Context, url string, dst *horizonRoot) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "terra-marketplace")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("horizon answered %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return backoff.Permanent(fmt.Errorf("horizon answered %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return backoff.Permanent(fmt.Errorf("decoding horizon root: %w", err))
	}
	return nil
}
