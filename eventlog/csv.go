package eventlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-token/token"
)

var csvHeader = []string{"seq", "kind", "from", "to", "value", "time"}

// WriteCSV writes the log as CSV with a header row. Values are decimal
// strings, addresses 0x-prefixed hex, times RFC 3339 with nanoseconds.
func (l *Log) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range l.Records() {
		row := []string{
			strconv.FormatUint(rec.Seq, 10),
			string(rec.Kind),
			rec.From.String(),
			rec.To.String(),
			rec.Value.Dec(),
			rec.Time.Format(time.RFC3339Nano),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a log previously written by WriteCSV.
func ReadCSV(r io.Reader) (*Log, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("eventlog: reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("eventlog: missing csv header")
	}

	log := NewLog()
	for i, row := range rows[1:] {
		rec, err := recordFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("eventlog: row %d: %w", i+1, err)
		}
		log.records = append(log.records, rec)
	}
	return log, nil
}

func recordFromRow(row []string) (Record, error) {
	if len(row) != len(csvHeader) {
		return Record{}, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(row))
	}
	seq, err := strconv.ParseUint(row[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid seq %q: %w", row[0], err)
	}
	kind := Kind(row[1])
	if kind != KindTransfer && kind != KindApproval {
		return Record{}, fmt.Errorf("unknown kind %q", row[1])
	}
	from, err := token.ParseAddress(row[2])
	if err != nil {
		return Record{}, err
	}
	to, err := token.ParseAddress(row[3])
	if err != nil {
		return Record{}, err
	}
	value, err := uint256.FromDecimal(row[4])
	if err != nil {
		return Record{}, fmt.Errorf("invalid value %q: %w", row[4], err)
	}
	ts, err := time.Parse(time.RFC3339Nano, row[5])
	if err != nil {
		return Record{}, fmt.Errorf("invalid time %q: %w", row[5], err)
	}
	return Record{Seq: seq, Kind: kind, From: from, To: to, Value: value, Time: ts}, nil
}
