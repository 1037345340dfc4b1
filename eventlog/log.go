// Package eventlog records a ledger's observable log — transfer and
// approval events — for inspection and export. It implements
// token.EventSink and keeps an append-only in-memory sequence with
// per-account traces and summary statistics.
package eventlog

import (
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-token/token"
)

// Kind discriminates record types.
type Kind string

const (
	KindTransfer Kind = "transfer"
	KindApproval Kind = "approval"
)

// Record is one logged event. For transfers, From/To are the sender
// and recipient (token.ZeroAddress marking issuance or destruction).
// For approvals, From is the owner and To the spender.
type Record struct {
	Seq   uint64
	Kind  Kind
	From  token.Address
	To    token.Address
	Value *uint256.Int
	Time  time.Time
}

// Log is an append-only event log. Safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	records []Record
	now     func() time.Time
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Transfer records a transfer event. Part of token.EventSink.
func (l *Log) Transfer(ev token.TransferEvent) {
	l.append(KindTransfer, ev.From, ev.To, ev.Value)
}

// Approval records an approval event. Part of token.EventSink.
func (l *Log) Approval(ev token.ApprovalEvent) {
	l.append(KindApproval, ev.Owner, ev.Spender, ev.Value)
}

var _ token.EventSink = (*Log)(nil)

func (l *Log) append(kind Kind, from, to token.Address, value *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, Record{
		Seq:   uint64(len(l.records)),
		Kind:  kind,
		From:  from,
		To:    to,
		Value: value.Clone(),
		Time:  l.now(),
	})
}

// Len returns the number of records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Records returns a copy of all records in append order.
func (l *Log) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// AccountTrace returns the records involving one account, in order.
func (l *Log) AccountTrace(account token.Address) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Record
	for _, rec := range l.records {
		if rec.From == account || rec.To == account {
			out = append(out, rec)
		}
	}
	return out
}

// Summary provides basic statistics about the log.
type Summary struct {
	NumRecords   int
	NumTransfers int
	NumApprovals int
	NumAccounts  int
	Volume       *uint256.Int // total value moved by transfers
	StartTime    time.Time
	EndTime      time.Time
}

// Summarize computes summary statistics.
func (l *Log) Summarize() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	summary := Summary{
		NumRecords: len(l.records),
		Volume:     new(uint256.Int),
	}
	accounts := make(map[token.Address]bool)

	for i, rec := range l.records {
		switch rec.Kind {
		case KindTransfer:
			summary.NumTransfers++
			summary.Volume.Add(summary.Volume, rec.Value)
		case KindApproval:
			summary.NumApprovals++
		}
		if !rec.From.IsZero() {
			accounts[rec.From] = true
		}
		if !rec.To.IsZero() {
			accounts[rec.To] = true
		}
		if i == 0 {
			summary.StartTime = rec.Time
		}
		summary.EndTime = rec.Time
	}

	summary.NumAccounts = len(accounts)
	return summary
}
