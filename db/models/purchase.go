package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Purchase : journal row written after a purchase committed.
// Amounts are stored as text: sqlite would turn 128-bit numerics into floats.
type Purchase struct {
	bun.BaseModel `bun:"table:purchases"`

	ID            string          `json:"id" bun:",pk"`
	AssetID       uint64          `json:"asset_id" bun:",notnull"`
	Seller        string          `json:"seller" bun:",notnull"`
	Buyer         string          `json:"buyer" bun:",notnull"`
	Quantity      decimal.Decimal `json:"quantity" bun:"type:varchar(40),notnull"`
	PricePerToken decimal.Decimal `json:"price_per_token" bun:"type:varchar(40),notnull"`
	TotalPaid     decimal.Decimal `json:"total_paid" bun:"type:varchar(40),notnull"`
	FeePaid       decimal.Decimal `json:"fee_paid" bun:"type:varchar(40),notnull"`
	SellerAmount  decimal.Decimal `json:"seller_amount" bun:"type:varchar(40),notnull"`
	PaymentToken  string          `json:"payment_token" bun:",nullzero"`
	Network       string          `json:"network" bun:",nullzero"`
	Source        string          `json:"source" bun:",notnull"`
	State         string          `json:"state" bun:",default:'completed'"`
	CreatedAt     time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
