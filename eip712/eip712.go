// Package eip712 computes EIP-712 typed-structured-data digests for
// the permit flow: a domain separator binding signatures to one
// contract instance on one chain, a struct hash over the permit
// fields, and the final signing digest.
package eip712

import (
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

var (
	domainTypeHash = Keccak256([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	permitTypeHash = Keccak256([]byte("Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)"))
)

// Keccak256 returns the Keccak-256 digest of the concatenation of data.
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// DomainSeparator hashes the domain type descriptor together with the
// token name, version string, chain id, and verifying contract
// address. A signature produced under one separator is rejected under
// any other, which stops cross-chain and cross-contract replay.
func DomainSeparator(name, version string, chainID uint64, contract [20]byte) [32]byte {
	nameHash := Keccak256([]byte(name))
	versionHash := Keccak256([]byte(version))
	chainWord := uint64Word(chainID)
	contractWord := addressWord(contract)
	return Keccak256(domainTypeHash[:], nameHash[:], versionHash[:], chainWord[:], contractWord[:])
}

// PermitStructHash hashes the permit type descriptor together with the
// permit fields. The nonce binds the signature to a single use.
func PermitStructHash(owner, spender [20]byte, value *uint256.Int, nonce, deadline uint64) [32]byte {
	ownerWord := addressWord(owner)
	spenderWord := addressWord(spender)
	valueWord := uint256Word(value)
	nonceWord := uint64Word(nonce)
	deadlineWord := uint64Word(deadline)
	return Keccak256(permitTypeHash[:], ownerWord[:], spenderWord[:], valueWord[:], nonceWord[:], deadlineWord[:])
}

// Digest combines the domain separator and struct hash under the
// standard "\x19\x01" prefix into the value that is signed.
func Digest(domainSeparator, structHash [32]byte) [32]byte {
	return Keccak256([]byte{0x19, 0x01}, domainSeparator[:], structHash[:])
}

// uint64Word encodes v as a big-endian 32-byte word.
func uint64Word(v uint64) [32]byte {
	return uint256.NewInt(v).Bytes32()
}

// uint256Word encodes v as a 32-byte word; nil encodes as zero.
func uint256Word(v *uint256.Int) [32]byte {
	if v == nil {
		return [32]byte{}
	}
	return v.Bytes32()
}

// addressWord left-pads a 20-byte address to a 32-byte word.
func addressWord(a [20]byte) [32]byte {
	var w [32]byte
	copy(w[12:], a[:])
	return w
}
