// Package wallet holds the signing capability for the bot. The signer is
// injected into the assembler rather than held as process global state, so
// everything that signs says so in its signature.
package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Signer can sign assembled transactions with the bot's key.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(tx *solana.Transaction) error
}

// Keypair is a Signer over a single ed25519 private key.
type Keypair struct {
	key solana.PrivateKey
}

// FromBase58 parses base58 encoded key material, the format wallet
// exporters emit.
func FromBase58(secret string) (*Keypair, error) {
	if secret == "" {
		return nil, fmt.Errorf("empty secret key")
	}
	key, err := solana.PrivateKeyFromBase58(secret)
	if err != nil {
		return nil, fmt.Errorf("parse secret key: %w", err)
	}
	return &Keypair{key: key}, nil
}

func (k *Keypair) PublicKey() solana.PublicKey {
	return k.key.PublicKey()
}

func (k *Keypair) Sign(tx *solana.Transaction) error {
	_, err := tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(k.key.PublicKey()) {
			return &k.key
		}
		return nil
	})
	return err
}
