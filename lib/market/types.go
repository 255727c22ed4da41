package market

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/terracapital/marketplace/common"
)

// Principal is a verifiable identity: a wallet public key (hex) or the configured
// address of a module such as the registry or the coordinator.
type Principal string

func (p Principal) String() string {
	return string(p)
}

func (p Principal) IsZero() bool {
	return strings.TrimSpace(string(p)) == ""
}

// Network is the tag of a settlement network the coordinator can route payments on.
type Network string

func (n Network) Supported() bool {
	return n == common.NetworkTestnet || n == common.NetworkMainnet
}

// Asset is a fractional, fungible position listed by a seller.
type Asset struct {
	ID              uint64          `json:"id"`
	Seller          Principal       `json:"seller"`
	Category        string          `json:"category"`
	Title           string          `json:"title"`
	PricePerToken   decimal.Decimal `json:"price_per_token"`
	TotalTokens     decimal.Decimal `json:"total_tokens"`
	AvailableTokens decimal.Decimal `json:"available_tokens"`
	Active          bool            `json:"active"`
}

// PurchaseReceipt describes one purchase. It is computed per call and never stored
// by the registry or the coordinator.
type PurchaseReceipt struct {
	AssetID      uint64          `json:"asset_id"`
	Seller       Principal       `json:"seller"`
	Buyer        Principal       `json:"buyer"`
	Quantity     decimal.Decimal `json:"quantity"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	FeePaid      decimal.Decimal `json:"fee_paid"`
	SellerAmount decimal.Decimal `json:"seller_amount"`
}

// ValidateText checks the bounded category/title strings: 1..=120 bytes.
func ValidateText(field, value string) error {
	n := len(value)
	if n == 0 || n > common.MaxTextLength {
		return Errorf(KindInvalidInput, "%s must be 1..%d bytes, got %d", field, common.MaxTextLength, n)
	}
	return nil
}
