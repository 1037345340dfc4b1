package sig_test

import (
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-token/eip712"
	"github.com/pflow-xyz/go-token/sig"
	"github.com/pflow-xyz/go-token/token"
)

func TestSignRecoverRoundTrip(t *testing.T) {
	signer, err := sig.NewSigner()
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}

	digest := eip712.Keccak256([]byte("round trip"))
	signature, err := signer.Sign(digest)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	recovered, err := sig.RecoverAddress(digest, signature)
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if recovered != signer.Address() {
		t.Errorf("recovered %s, want %s", recovered, signer.Address())
	}
}

func TestRecoverTamperedDigest(t *testing.T) {
	signer, err := sig.NewSigner()
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}

	digest := eip712.Keccak256([]byte("signed message"))
	signature, err := signer.Sign(digest)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	tampered := eip712.Keccak256([]byte("another message"))
	recovered, err := sig.RecoverAddress(tampered, signature)
	if err == nil && recovered == signer.Address() {
		t.Error("tampered digest recovered the signer")
	}
}

func TestRecoverRejectsMalformed(t *testing.T) {
	digest := eip712.Keccak256([]byte("x"))

	var bad [65]byte
	bad[64] = 5
	if _, err := sig.RecoverAddress(digest, bad); !errors.Is(err, sig.ErrInvalidRecoveryID) {
		t.Errorf("expected ErrInvalidRecoveryID, got %v", err)
	}

	// r = 0, s = 0
	var zero [65]byte
	if _, err := sig.RecoverAddress(digest, zero); !errors.Is(err, sig.ErrNonCanonical) {
		t.Errorf("expected ErrNonCanonical for zero values, got %v", err)
	}

	// High-s signatures are rejected as non-canonical.
	var highS [65]byte
	highS[0] = 1 // r = nonzero
	for i := 32; i < 64; i++ {
		highS[i] = 0xff
	}
	if _, err := sig.RecoverAddress(digest, highS); !errors.Is(err, sig.ErrNonCanonical) {
		t.Errorf("expected ErrNonCanonical for high s, got %v", err)
	}
}

func TestSignProducesLowS(t *testing.T) {
	signer, err := sig.NewSigner()
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}

	// Several digests; every emitted signature must recover cleanly,
	// which implies canonical low-s encoding.
	for i := 0; i < 8; i++ {
		digest := eip712.Keccak256([]byte{byte(i)})
		signature, err := signer.Sign(digest)
		if err != nil {
			t.Fatalf("sign %d failed: %v", i, err)
		}
		if _, err := sig.RecoverAddress(digest, signature); err != nil {
			t.Errorf("signature %d not canonical: %v", i, err)
		}
	}
}

func TestPermitEndToEnd(t *testing.T) {
	owner, err := sig.NewSigner()
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}
	spender := token.MustParseAddress("0x00000000000000000000000000000000000000aa")

	now := time.Unix(1_700_000_000, 0)
	ledger := token.New(token.Config{
		Deployer: owner.Address(),
		ChainID:  1,
		Contract: token.MustParseAddress("0x00000000000000000000000000000000000000cc"),
		Recover:  sig.Recoverer{},
		Now:      func() time.Time { return now },
	})

	amount := uint256.NewInt(500)
	deadline := uint64(now.Unix()) + 3600
	digest := ledger.PermitDigest(owner.Address(), spender, amount, deadline)
	signature, err := owner.Sign(digest)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if err := ledger.Permit(owner.Address(), spender, amount, deadline, signature); err != nil {
		t.Fatalf("permit failed: %v", err)
	}
	if got := ledger.Allowance(owner.Address(), spender); !got.Eq(amount) {
		t.Errorf("allowance = %s, want %s", got.Dec(), amount.Dec())
	}

	// The same signature cannot be consumed twice.
	err = ledger.Permit(owner.Address(), spender, amount, deadline, signature)
	if !errors.Is(err, token.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature on replay, got %v", err)
	}

	// A signature from another key never authorizes the owner.
	intruder, err := sig.NewSigner()
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}
	digest = ledger.PermitDigest(owner.Address(), spender, amount, deadline)
	forged, err := intruder.Sign(digest)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	err = ledger.Permit(owner.Address(), spender, amount, deadline, forged)
	if !errors.Is(err, token.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for forged permit, got %v", err)
	}
}
