package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-token/token"
)

// Recorder persists ledger events to a Store stream. It implements
// token.EventSink; because the sink interface cannot return errors,
// the first append failure is retained and reported by Err, and
// subsequent events are dropped.
type Recorder struct {
	mu      sync.Mutex
	store   Store
	stream  string
	version int
	err     error
}

// NewRecorder creates a recorder appending to the given stream. The
// stream's current version is loaded so recording can resume.
func NewRecorder(ctx context.Context, s Store, stream string) (*Recorder, error) {
	version, err := s.StreamVersion(ctx, stream)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: s, stream: stream, version: version}, nil
}

// Transfer persists a transfer event. Part of token.EventSink.
func (r *Recorder) Transfer(ev token.TransferEvent) {
	r.record(TypeTransfer, TransferPayload{
		From:  ev.From.String(),
		To:    ev.To.String(),
		Value: ev.Value.Dec(),
	})
}

// Approval persists an approval event. Part of token.EventSink.
func (r *Recorder) Approval(ev token.ApprovalEvent) {
	r.record(TypeApproval, ApprovalPayload{
		Owner:   ev.Owner.String(),
		Spender: ev.Spender.String(),
		Value:   ev.Value.Dec(),
	})
}

var _ token.EventSink = (*Recorder)(nil)

// Err returns the first append failure, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) record(eventType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}

	event, err := NewEvent(r.stream, eventType, payload)
	if err != nil {
		r.err = err
		return
	}
	version, err := r.store.Append(context.Background(), r.stream, r.version, []*Event{event})
	if err != nil {
		r.err = err
		return
	}
	r.version = version
}

// Tally is ledger state rebuilt from a stream: balances and allowances
// keyed by hex address, plus the derived total supply. Used to audit a
// live ledger against its persisted log.
type Tally struct {
	Balances    map[string]*uint256.Int
	Allowances  map[string]map[string]*uint256.Int
	TotalSupply *uint256.Int
}

// Rebuild folds a stream's events into a Tally. Transfers from the
// zero address grow the supply (issuance); transfers to it shrink the
// supply (destruction). Approvals overwrite allowances.
func Rebuild(ctx context.Context, s Store, stream string) (*Tally, error) {
	events, err := s.Read(ctx, stream, 0)
	if err != nil {
		return nil, err
	}

	tally := &Tally{
		Balances:    make(map[string]*uint256.Int),
		Allowances:  make(map[string]map[string]*uint256.Int),
		TotalSupply: new(uint256.Int),
	}
	zero := token.ZeroAddress.String()

	for _, event := range events {
		switch event.Type {
		case TypeTransfer:
			var p TransferPayload
			if err := event.Decode(&p); err != nil {
				return nil, fmt.Errorf("store: event %d: %w", event.Version, err)
			}
			value, err := uint256.FromDecimal(p.Value)
			if err != nil {
				return nil, fmt.Errorf("store: event %d: invalid value %q: %w", event.Version, p.Value, err)
			}
			if p.From == zero {
				tally.TotalSupply.Add(tally.TotalSupply, value)
			} else {
				bal := tally.balance(p.From)
				bal.Sub(bal, value)
			}
			if p.To == zero {
				tally.TotalSupply.Sub(tally.TotalSupply, value)
			} else {
				bal := tally.balance(p.To)
				bal.Add(bal, value)
			}
		case TypeApproval:
			var p ApprovalPayload
			if err := event.Decode(&p); err != nil {
				return nil, fmt.Errorf("store: event %d: %w", event.Version, err)
			}
			value, err := uint256.FromDecimal(p.Value)
			if err != nil {
				return nil, fmt.Errorf("store: event %d: invalid value %q: %w", event.Version, p.Value, err)
			}
			forOwner, ok := tally.Allowances[p.Owner]
			if !ok {
				forOwner = make(map[string]*uint256.Int)
				tally.Allowances[p.Owner] = forOwner
			}
			forOwner[p.Spender] = value
		default:
			return nil, fmt.Errorf("store: event %d: unknown type %q", event.Version, event.Type)
		}
	}
	return tally, nil
}

func (t *Tally) balance(account string) *uint256.Int {
	bal, ok := t.Balances[account]
	if !ok {
		bal = new(uint256.Int)
		t.Balances[account] = bal
	}
	return bal
}
