package token

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-token/eip712"
)

// Permit sets allowance[owner][spender] = amount on the strength of an
// off-chain signature, so the owner never submits a call directly.
//
// The signature covers (owner, spender, amount, nonce, deadline) under
// this instance's domain separator. The nonce bound into the signature
// is the owner's stored nonce before the call; exactly one increment
// happens per successful permit, so a consumed signature can never be
// replayed. Allowance semantics are the same overwrite as Approve.
func (l *Ledger) Permit(owner, spender Address, amount *uint256.Int, deadline uint64, sig [65]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if uint64(l.now().Unix()) > deadline {
		return ErrExpired
	}
	if l.recover == nil {
		return ErrNoRecoverer
	}

	nonce := l.nonces[owner]
	digest := l.permitDigest(owner, spender, amount, nonce, deadline)

	signer, err := l.recover.Recover(digest, sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if signer != owner {
		return ErrInvalidSignature
	}

	l.nonces[owner] = nonce + 1
	l.setAllowance(owner, spender, amount.Clone())
	l.emitApproval(owner, spender, amount)
	return nil
}

// PermitDigest returns the digest an owner must sign to authorize a
// permit for the owner's current nonce.
func (l *Ledger) PermitDigest(owner, spender Address, amount *uint256.Int, deadline uint64) [32]byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.permitDigest(owner, spender, amount, l.nonces[owner], deadline)
}

func (l *Ledger) permitDigest(owner, spender Address, amount *uint256.Int, nonce, deadline uint64) [32]byte {
	structHash := eip712.PermitStructHash([20]byte(owner), [20]byte(spender), amount, nonce, deadline)
	return eip712.Digest(l.domain, structHash)
}
