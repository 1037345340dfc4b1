package eip712

import (
	"encoding/hex"
	"testing"

	"github.com/holiman/uint256"
)

func TestKeccak256KnownVectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"abc", "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, tc := range cases {
		got := Keccak256([]byte(tc.in))
		if hex.EncodeToString(got[:]) != tc.want {
			t.Errorf("Keccak256(%q) = %x, want %s", tc.in, got, tc.want)
		}
	}
}

func TestKeccak256Concatenation(t *testing.T) {
	// Hashing split inputs must equal hashing their concatenation.
	joined := Keccak256([]byte("hello world"))
	split := Keccak256([]byte("hello "), []byte("world"))
	if joined != split {
		t.Error("split inputs hashed differently from concatenation")
	}
}

func TestDomainSeparatorScoping(t *testing.T) {
	var contract [20]byte
	contract[19] = 0xcc

	base := DomainSeparator("Token", "1", 1, contract)

	if got := DomainSeparator("Other", "1", 1, contract); got == base {
		t.Error("separator not bound to name")
	}
	if got := DomainSeparator("Token", "2", 1, contract); got == base {
		t.Error("separator not bound to version")
	}
	if got := DomainSeparator("Token", "1", 5, contract); got == base {
		t.Error("separator not bound to chain id")
	}
	var other [20]byte
	other[19] = 0xdd
	if got := DomainSeparator("Token", "1", 1, other); got == base {
		t.Error("separator not bound to contract address")
	}
	if got := DomainSeparator("Token", "1", 1, contract); got != base {
		t.Error("separator not deterministic")
	}
}

func TestPermitStructHashFieldBinding(t *testing.T) {
	var owner, spender [20]byte
	owner[19], spender[19] = 1, 2
	amount := uint256.NewInt(500)

	base := PermitStructHash(owner, spender, amount, 0, 1000)

	if got := PermitStructHash(spender, owner, amount, 0, 1000); got == base {
		t.Error("hash not bound to owner/spender order")
	}
	if got := PermitStructHash(owner, spender, uint256.NewInt(501), 0, 1000); got == base {
		t.Error("hash not bound to value")
	}
	if got := PermitStructHash(owner, spender, amount, 1, 1000); got == base {
		t.Error("hash not bound to nonce")
	}
	if got := PermitStructHash(owner, spender, amount, 0, 1001); got == base {
		t.Error("hash not bound to deadline")
	}
}

func TestPermitStructHashNilValue(t *testing.T) {
	var owner, spender [20]byte
	withNil := PermitStructHash(owner, spender, nil, 0, 0)
	withZero := PermitStructHash(owner, spender, new(uint256.Int), 0, 0)
	if withNil != withZero {
		t.Error("nil value should hash as zero")
	}
}

func TestDigest(t *testing.T) {
	var domain, structHash [32]byte
	domain[0], structHash[0] = 0xaa, 0xbb

	got := Digest(domain, structHash)
	want := Keccak256([]byte{0x19, 0x01}, domain[:], structHash[:])
	if got != want {
		t.Error("digest does not follow the \\x19\\x01 scheme")
	}
	if got == Digest(structHash, domain) {
		t.Error("digest not ordered")
	}
}
