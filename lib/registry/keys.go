package registry

import (
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/state"
)

const namespace = "registry"

var (
	adminKey       = state.NewKey(namespace, "admin")
	coordinatorKey = state.NewKey(namespace, "coordinator")
	nextAssetIDKey = state.NewKey(namespace, "next_asset_id")
)

func assetKey(id uint64) state.Key {
	return state.NewKey(namespace, "asset", id)
}

func balanceKey(assetID uint64, buyer market.Principal) state.Key {
	return state.NewKey(namespace, "balance", assetID, buyer)
}
