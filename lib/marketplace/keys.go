package marketplace

import (
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/state"
)

const namespace = "marketplace"

var (
	adminKey                = state.NewKey(namespace, "admin")
	registryKey             = state.NewKey(namespace, "registry")
	paymentTokenKey         = state.NewKey(namespace, "payment_token")
	activeNetworkKey        = state.NewKey(namespace, "active_network")
	treasuryKey             = state.NewKey(namespace, "treasury")
	feeBpsKey               = state.NewKey(namespace, "fee_bps")
	liquidityDestinationKey = state.NewKey(namespace, "liquidity_destination")
	liquidityShareBpsKey    = state.NewKey(namespace, "liquidity_share_bps")
)

func networkPaymentTokenKey(network market.Network) state.Key {
	return state.NewKey(namespace, "payment_token_by_network", network)
}
