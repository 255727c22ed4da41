package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/market"
)

// Prints a new wallet key pair, or with WALLET_SEED (hex, 32 bytes) the signed login
// body for that wallet, ready to POST to /auth.
func main() {
	seedHex := os.Getenv("WALLET_SEED")
	if seedHex == "" {
		pub, priv, err := ed25519.GenerateKey(nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("principal:", hex.EncodeToString(pub))
		fmt.Println("seed:     ", hex.EncodeToString(priv.Seed()))
		return
	}

	seed, err := hex.DecodeString(seedHex)
	if err != nil || len(seed) != ed25519.SeedSize {
		fmt.Fprintln(os.Stderr, "WALLET_SEED must be 32 hex encoded bytes")
		os.Exit(1)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	principal := market.Principal(hex.EncodeToString(priv.Public().(ed25519.PublicKey)))
	ts := time.Now().Unix()
	sig := ed25519.Sign(priv, []byte(auth.LoginMessage(principal, ts)))
	fmt.Printf(`{"principal":%q,"timestamp":%d,"signature":%q}`+"\n", principal, ts, hex.EncodeToString(sig))
}
