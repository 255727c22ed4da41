package common

const (
	NetworkTestnet = "testnet"
	NetworkMainnet = "mainnet"

	BpsDenominator = 10_000
	MaxFeeBps      = 2_000

	MaxListLimit   = 50
	MaxTextLength  = 120
	FirstAssetID   = 1
	DefaultNetwork = NetworkTestnet

	PurchaseStateCompleted = "completed"

	PurchaseSourceCoordinator = "coordinator"
	PurchaseSourceRegistry    = "registry"

	// echo context keys set by the token middleware
	ContextKeyProof     = "Proof"
	ContextKeyPrincipal = "Principal"

	FnExecuteSale = "execute_sale"

	// in-process pubsub topic for committed purchases
	PurchaseTopic = "purchases"
)
