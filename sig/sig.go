// Package sig provides secp256k1 signature recovery and signing for
// the permit flow. Signatures are the 65-byte r||s||v form, with v the
// recovery id (0/1, or the legacy 27/28 offset). Only canonical low-s
// signatures are accepted, so each digest has one valid encoding per key.
package sig

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/ecdsa"
	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"

	"github.com/pflow-xyz/go-token/eip712"
	"github.com/pflow-xyz/go-token/token"
)

var (
	ErrInvalidRecoveryID = errors.New("sig: invalid recovery id")
	ErrNonCanonical      = errors.New("sig: signature values out of range")
	ErrUnrecoverable     = errors.New("sig: could not determine recovery id")
)

// halfOrder is floor(N/2) for the secp256k1 group order N.
var halfOrder = new(big.Int).Rsh(fr.Modulus(), 1)

// Recoverer implements token.SignerRecovery on secp256k1.
type Recoverer struct{}

// Recover returns the address that signed digest.
func (Recoverer) Recover(digest [32]byte, sig [65]byte) (token.Address, error) {
	return RecoverAddress(digest, sig)
}

var _ token.SignerRecovery = Recoverer{}

// RecoverAddress recovers the signer address from a digest and a
// 65-byte r||s||v signature.
func RecoverAddress(digest [32]byte, sig [65]byte) (token.Address, error) {
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return token.Address{}, ErrInvalidRecoveryID
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if r.Sign() == 0 || r.Cmp(fr.Modulus()) >= 0 {
		return token.Address{}, ErrNonCanonical
	}
	if s.Sign() == 0 || s.Cmp(halfOrder) > 0 {
		return token.Address{}, ErrNonCanonical
	}

	var pub ecdsa.PublicKey
	if err := pub.RecoverFrom(digest[:], uint(v), r, s); err != nil {
		return token.Address{}, err
	}
	return PublicKeyAddress(&pub), nil
}

// PublicKeyAddress derives the account address from a public key: the
// low 20 bytes of the Keccak-256 hash of the uncompressed coordinates.
func PublicKeyAddress(pub *ecdsa.PublicKey) token.Address {
	x := pub.A.X.Bytes()
	y := pub.A.Y.Bytes()
	h := eip712.Keccak256(x[:], y[:])
	var a token.Address
	copy(a[:], h[12:])
	return a
}

// Signer signs permit digests with a secp256k1 private key, producing
// recoverable low-s signatures.
type Signer struct {
	key *ecdsa.PrivateKey
}

// NewSigner generates a fresh key pair.
func NewSigner() (*Signer, error) {
	key, err := ecdsa.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

// Address returns the signer's account address.
func (s *Signer) Address() token.Address {
	return PublicKeyAddress(&s.key.PublicKey)
}

// Sign signs a 32-byte digest and returns the r||s||v signature.
func (s *Signer) Sign(digest [32]byte) ([65]byte, error) {
	var out [65]byte

	raw, err := s.key.Sign(digest[:], nil)
	if err != nil {
		return out, err
	}

	r := new(big.Int).SetBytes(raw[:32])
	sv := new(big.Int).SetBytes(raw[32:64])
	if sv.Cmp(halfOrder) > 0 {
		sv = new(big.Int).Sub(fr.Modulus(), sv)
	}
	r.FillBytes(out[:32])
	sv.FillBytes(out[32:64])

	// The recovery id is the parity/overflow choice that yields our own
	// key; with low-s enforced there is exactly one.
	want := s.Address()
	for v := byte(0); v <= 1; v++ {
		out[64] = v
		got, err := RecoverAddress(digest, out)
		if err == nil && got == want {
			return out, nil
		}
	}
	return [65]byte{}, ErrUnrecoverable
}
