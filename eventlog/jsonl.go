package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-token/token"
)

// jsonRecord is the wire form of a Record: one JSON object per line.
type jsonRecord struct {
	Seq   uint64    `json:"seq"`
	Kind  Kind      `json:"kind"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	Value string    `json:"value"`
	Time  time.Time `json:"time"`
}

// WriteJSONL writes the log as JSON Lines, one record per line.
func (l *Log) WriteJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, rec := range l.Records() {
		line := jsonRecord{
			Seq:   rec.Seq,
			Kind:  rec.Kind,
			From:  rec.From.String(),
			To:    rec.To.String(),
			Value: rec.Value.Dec(),
			Time:  rec.Time,
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

// ReadJSONL parses a log previously written by WriteJSONL. Empty lines
// are skipped.
func ReadJSONL(r io.Reader) (*Log, error) {
	log := NewLog()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var jr jsonRecord
		if err := json.Unmarshal(line, &jr); err != nil {
			return nil, fmt.Errorf("eventlog: line %d: invalid JSON: %w", lineNum, err)
		}
		rec, err := jr.toRecord()
		if err != nil {
			return nil, fmt.Errorf("eventlog: line %d: %w", lineNum, err)
		}
		log.records = append(log.records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: reading jsonl: %w", err)
	}
	return log, nil
}

func (jr jsonRecord) toRecord() (Record, error) {
	if jr.Kind != KindTransfer && jr.Kind != KindApproval {
		return Record{}, fmt.Errorf("unknown kind %q", jr.Kind)
	}
	from, err := token.ParseAddress(jr.From)
	if err != nil {
		return Record{}, err
	}
	to, err := token.ParseAddress(jr.To)
	if err != nil {
		return Record{}, err
	}
	value, err := uint256.FromDecimal(jr.Value)
	if err != nil {
		return Record{}, fmt.Errorf("invalid value %q: %w", jr.Value, err)
	}
	return Record{Seq: jr.Seq, Kind: jr.Kind, From: from, To: to, Value: value, Time: jr.Time}, nil
}
