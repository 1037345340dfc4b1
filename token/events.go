package token

import "github.com/holiman/uint256"

// TransferEvent records a balance movement. Issuance uses ZeroAddress
// as From; destruction uses ZeroAddress as To.
type TransferEvent struct {
	From  Address
	To    Address
	Value *uint256.Int
}

// ApprovalEvent records an allowance being set to Value.
type ApprovalEvent struct {
	Owner   Address
	Spender Address
	Value   *uint256.Int
}

// EventSink receives the ledger's observable log. Exactly one event is
// delivered per successful mutating call, while the ledger lock is
// held; sinks must not call back into the ledger.
type EventSink interface {
	Transfer(TransferEvent)
	Approval(ApprovalEvent)
}
