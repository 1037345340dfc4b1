// Package token implements a fungible-token ledger: per-account
// balances, owner/spender allowances, and signature-authorized
// allowances (permit). Every operation is a single atomic state
// transition; a failed precondition leaves all state unchanged.
package token

import (
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-token/eip712"
)

// Token identity, fixed at construction and never mutated.
const (
	TokenName     = "Token"
	TokenSymbol   = "TOK"
	TokenDecimals = 18

	// PermitVersion is the EIP-712 domain version string.
	PermitVersion = "1"
)

// InitialSupply returns the supply minted to the deployer at
// construction: 1,000,000,000 tokens in base units (10^18 per token).
func InitialSupply() *uint256.Int {
	supply := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(TokenDecimals))
	return supply.Mul(supply, uint256.NewInt(1_000_000_000))
}

// SignerRecovery recovers the signing address from a 32-byte digest
// and a 65-byte r||s||v signature. It is injected so the ledger stays
// independent of any particular curve implementation.
type SignerRecovery interface {
	Recover(digest [32]byte, sig [65]byte) (Address, error)
}

// Config carries the deployment parameters of a ledger instance.
type Config struct {
	// Deployer receives the initial supply.
	Deployer Address

	// ChainID and Contract scope permit signatures to this ledger
	// instance on one chain.
	ChainID  uint64
	Contract Address

	// Recover verifies permit signatures. Required for Permit; all
	// other operations work without it.
	Recover SignerRecovery

	// Sink receives transfer and approval events. Optional.
	Sink EventSink

	// Now supplies the clock for permit deadlines. Defaults to time.Now.
	Now func() time.Time
}

// Ledger owns all token state for one deployed instance.
type Ledger struct {
	mu sync.RWMutex

	chainID  uint64
	contract Address
	domain   [32]byte

	balances    map[Address]*uint256.Int
	allowances  map[Address]map[Address]*uint256.Int
	nonces      map[Address]uint64
	totalSupply *uint256.Int

	recover SignerRecovery
	sink    EventSink
	now     func() time.Time
}

// New deploys a ledger and mints the initial supply to the deployer,
// emitting a transfer event from ZeroAddress.
func New(cfg Config) *Ledger {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	l := &Ledger{
		chainID:     cfg.ChainID,
		contract:    cfg.Contract,
		domain:      eip712.DomainSeparator(TokenName, PermitVersion, cfg.ChainID, cfg.Contract),
		balances:    make(map[Address]*uint256.Int),
		allowances:  make(map[Address]map[Address]*uint256.Int),
		nonces:      make(map[Address]uint64),
		totalSupply: new(uint256.Int),
		recover:     cfg.Recover,
		sink:        cfg.Sink,
		now:         cfg.Now,
	}
	l.mint(cfg.Deployer, InitialSupply())
	return l
}

// Name returns the token name.
func (l *Ledger) Name() string { return TokenName }

// Symbol returns the token symbol.
func (l *Ledger) Symbol() string { return TokenSymbol }

// Decimals returns the token's decimal precision.
func (l *Ledger) Decimals() uint8 { return TokenDecimals }

// ChainID returns the chain identifier bound into permit signatures.
func (l *Ledger) ChainID() uint64 { return l.chainID }

// ContractAddress returns this instance's own address.
func (l *Ledger) ContractAddress() Address { return l.contract }

// DomainSeparator returns the EIP-712 domain separator scoping permit
// signatures to this instance.
func (l *Ledger) DomainSeparator() [32]byte { return l.domain }

// TotalSupply returns the current total supply.
func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply.Clone()
}

// BalanceOf returns the balance of an account, zero if untouched.
func (l *Ledger) BalanceOf(account Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if bal, ok := l.balances[account]; ok {
		return bal.Clone()
	}
	return new(uint256.Int)
}

// Allowance returns the amount spender may withdraw from owner.
func (l *Ledger) Allowance(owner, spender Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if cur, ok := l.allowances[owner][spender]; ok {
		return cur.Clone()
	}
	return new(uint256.Int)
}

// Nonce returns the account's next unused permit nonce.
func (l *Ledger) Nonce(account Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nonces[account]
}

// Transfer moves value from the caller to another account.
func (l *Ledger) Transfer(caller, to Address, value *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balance(caller).Lt(value) {
		return ErrInsufficientBalance
	}
	l.debit(caller, value)
	l.credit(to, value)
	l.emitTransfer(caller, to, value)
	return nil
}

// Approve sets the caller→spender allowance to amount, overwriting any
// prior value.
//
// Overwrite semantics carry the classic front-running hazard: two
// in-flight approvals race, and a spender can consume the old
// allowance before the new one lands. Callers wanting to adjust an
// existing allowance should use IncreaseAllowance or DecreaseAllowance.
func (l *Ledger) Approve(caller, spender Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setAllowance(caller, spender, amount.Clone())
	l.emitApproval(caller, spender, amount)
	return nil
}

// IncreaseAllowance atomically adds addedValue to the caller→spender
// allowance.
func (l *Ledger) IncreaseAllowance(caller, spender Address, addedValue *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	next, overflow := new(uint256.Int).AddOverflow(l.allowance(caller, spender), addedValue)
	if overflow {
		return ErrAllowanceOverflow
	}
	l.setAllowance(caller, spender, next)
	l.emitApproval(caller, spender, next)
	return nil
}

// DecreaseAllowance atomically subtracts subtractedValue from the
// caller→spender allowance, failing fast rather than wrapping when the
// result would go below zero.
func (l *Ledger) DecreaseAllowance(caller, spender Address, subtractedValue *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := l.allowance(caller, spender)
	if cur.Lt(subtractedValue) {
		return ErrAllowanceUnderflow
	}
	next := new(uint256.Int).Sub(cur, subtractedValue)
	l.setAllowance(caller, spender, next)
	l.emitApproval(caller, spender, next)
	return nil
}

// TransferFrom moves value from one account to another on the strength
// of the caller's allowance. The allowance is decremented by exactly
// the transferred amount.
func (l *Ledger) TransferFrom(caller, from, to Address, value *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balance(from).Lt(value) {
		return ErrInsufficientBalance
	}
	allowed := l.allowance(from, caller)
	if allowed.Lt(value) {
		return ErrInsufficientAllowance
	}
	l.setAllowance(from, caller, new(uint256.Int).Sub(allowed, value))
	l.debit(from, value)
	l.credit(to, value)
	l.emitTransfer(from, to, value)
	return nil
}

// CheckInvariants verifies that the total supply equals the sum of all
// balances, returning ErrSupplyMismatch otherwise.
func (l *Ledger) CheckInvariants() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sum := new(uint256.Int)
	for _, bal := range l.balances {
		sum.Add(sum, bal)
	}
	if !sum.Eq(l.totalSupply) {
		return ErrSupplyMismatch
	}
	return nil
}

// mint credits an account and grows the supply. Only construction
// reaches it; no external entry point is wired.
func (l *Ledger) mint(to Address, value *uint256.Int) {
	l.credit(to, value)
	l.totalSupply.Add(l.totalSupply, value)
	l.emitTransfer(ZeroAddress, to, value)
}

// burn debits an account and shrinks the supply. Internal primitive;
// callers needing destruction must wire their own entry point.
func (l *Ledger) burn(from Address, value *uint256.Int) error {
	if l.balance(from).Lt(value) {
		return ErrInsufficientBalance
	}
	l.debit(from, value)
	l.totalSupply.Sub(l.totalSupply, value)
	l.emitTransfer(from, ZeroAddress, value)
	return nil
}

// balance returns the stored balance without copying. Callers hold the lock.
func (l *Ledger) balance(account Address) *uint256.Int {
	if bal, ok := l.balances[account]; ok {
		return bal
	}
	return new(uint256.Int)
}

func (l *Ledger) debit(account Address, value *uint256.Int) {
	l.balances[account] = new(uint256.Int).Sub(l.balance(account), value)
}

func (l *Ledger) credit(account Address, value *uint256.Int) {
	l.balances[account] = new(uint256.Int).Add(l.balance(account), value)
}

func (l *Ledger) allowance(owner, spender Address) *uint256.Int {
	if cur, ok := l.allowances[owner][spender]; ok {
		return cur
	}
	return new(uint256.Int)
}

func (l *Ledger) setAllowance(owner, spender Address, amount *uint256.Int) {
	forOwner, ok := l.allowances[owner]
	if !ok {
		forOwner = make(map[Address]*uint256.Int)
		l.allowances[owner] = forOwner
	}
	forOwner[spender] = amount
}

func (l *Ledger) emitTransfer(from, to Address, value *uint256.Int) {
	if l.sink != nil {
		l.sink.Transfer(TransferEvent{From: from, To: to, Value: value.Clone()})
	}
}

func (l *Ledger) emitApproval(owner, spender Address, value *uint256.Int) {
	if l.sink != nil {
		l.sink.Approval(ApprovalEvent{Owner: owner, Spender: spender, Value: value.Clone()})
	}
}
