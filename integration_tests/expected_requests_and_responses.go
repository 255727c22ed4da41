package integration_tests

type ExpectedAuthRequestBody struct {
	Principal string `json:"principal"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

type ExpectedAuthResponseBody struct {
	AccessToken string `json:"access_token"`
}

type ExpectedCreateAssetRequestBody struct {
	Category      string `json:"category"`
	Title         string `json:"title"`
	PricePerToken string `json:"price_per_token"`
	TotalTokens   string `json:"total_tokens"`
}

type ExpectedAsset struct {
	ID              uint64 `json:"id"`
	Seller          string `json:"seller"`
	Category        string `json:"category"`
	Title           string `json:"title"`
	PricePerToken   string `json:"price_per_token"`
	TotalTokens     string `json:"total_tokens"`
	AvailableTokens string `json:"available_tokens"`
	Active          bool   `json:"active"`
}

type ExpectedListAssetsResponseBody struct {
	Assets []ExpectedAsset `json:"assets"`
	NextID uint64          `json:"next_id"`
}

type ExpectedBuyTokensRequestBody struct {
	AssetID  uint64 `json:"asset_id"`
	Quantity string `json:"quantity"`
}

type ExpectedReceipt struct {
	AssetID      uint64 `json:"asset_id"`
	Seller       string `json:"seller"`
	Buyer        string `json:"buyer"`
	Quantity     string `json:"quantity"`
	TotalPaid    string `json:"total_paid"`
	FeePaid      string `json:"fee_paid"`
	SellerAmount string `json:"seller_amount"`
}

type ExpectedPurchase struct {
	ID           string `json:"id"`
	AssetID      uint64 `json:"asset_id"`
	Buyer        string `json:"buyer"`
	TotalPaid    string `json:"total_paid"`
	FeePaid      string `json:"fee_paid"`
	PaymentToken string `json:"payment_token"`
	Network      string `json:"network"`
	Source       string `json:"source"`
	State        string `json:"state"`
}

type ExpectedListPurchasesResponseBody struct {
	Purchases []ExpectedPurchase `json:"purchases"`
}

type ExpectedBalanceResponseBody struct {
	Token   string `json:"token"`
	Balance string `json:"balance"`
}

type ExpectedBuyerBalanceResponseBody struct {
	AssetID uint64 `json:"asset_id"`
	Buyer   string `json:"buyer"`
	Balance string `json:"balance"`
}

type ExpectedMintRequestBody struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type ExpectedNetworkResponseBody struct {
	Network      string `json:"network"`
	PaymentToken string `json:"payment_token"`
}

type ExpectedSettings struct {
	Admin                string  `json:"admin"`
	Registry             string  `json:"registry"`
	PaymentToken         string  `json:"payment_token"`
	ActiveNetwork        string  `json:"active_network"`
	Treasury             string  `json:"treasury"`
	FeeBps               int64   `json:"fee_bps"`
	LiquidityDestination *string `json:"liquidity_destination"`
	LiquidityShareBps    int64   `json:"liquidity_share_bps"`
}
