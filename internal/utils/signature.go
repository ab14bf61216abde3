package utils

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

var ErrBadSignature = errors.New("invalid signature")

// LoginMessage is the text a wallet signs to prove it controls address.
func LoginMessage(address models.Address, nonce string) string {
	return fmt.Sprintf("Sign in to Anywork\n\nAddress: %s\nNonce: %s", address, nonce)
}

// TextHash is the EIP-191 personal_sign digest of msg.
func TextHash(msg string) []byte {
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "\x19Ethereum Signed Message:\n%d%s", len(msg), msg)
	return h.Sum(nil)
}

// RecoverSigner returns the address whose key produced the 65-byte
// personal_sign signature sigHex over msg.
func RecoverSigner(msg, sigHex string) (models.Address, error) {
	sig, err := hexutil.Decode(sigHex)
	if err != nil || len(sig) != crypto.SignatureLength {
		return models.ZeroAddress, ErrBadSignature
	}
	// Wallets send V as 27/28; recovery wants 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(TextHash(msg), sig)
	if err != nil {
		return models.ZeroAddress, ErrBadSignature
	}
	return models.Address(crypto.PubkeyToAddress(*pub).Hex()), nil
}
