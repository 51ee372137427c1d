// Package metrics implements the epoch-level metrics record, the CSV
// epoch log written into each run directory, and a throughput window
// for step timing.
package metrics

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Record is one epoch's worth of reported metrics.
type Record struct {
	Epoch    int
	Loss     float64
	Accuracy float64
	Extra    map[string]float64
}

// Map flattens the record to name -> scalar, which is the shape the
// reporter serializes.
func (r Record) Map() map[string]float64 {
	out := map[string]float64{
		"epoch":    float64(r.Epoch),
		"loss":     r.Loss,
		"accuracy": r.Accuracy,
	}
	for k, v := range r.Extra {
		out[k] = v
	}
	return out
}

// EpochLog appends one CSV row per completed epoch, in epoch order.
//
// Columns: epoch, loss, accuracy, then the Extra metrics of the
// first appended record in sorted name order. The first record fixes
// the column set; every later record must carry the same extra keys.
// Rows are flushed as they are written so a crashed run keeps every
// completed epoch.
type EpochLog struct {
	file      *os.File
	writer    *csv.Writer
	extraCols []string
	started   bool
	nextEpoch int
}

// NewEpochLog creates (truncating) the log file. The header is
// written with the first record, once the column set is known.
func NewEpochLog(path string) (*EpochLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "metrics: create %s", path)
	}
	return &EpochLog{file: file, writer: csv.NewWriter(file)}, nil
}

// Append writes one row for the record.
//
// The first record may carry any epoch (a resumed run starts past
// zero); after that epochs must arrive consecutively. An out-of-order
// epoch, or an Extra set differing from the first record's, is a
// programming error in the caller and is rejected.
func (l *EpochLog) Append(r Record) error {
	if !l.started {
		l.extraCols = make([]string, 0, len(r.Extra))
		for k := range r.Extra {
			l.extraCols = append(l.extraCols, k)
		}
		sort.Strings(l.extraCols)
		header := append([]string{"epoch", "loss", "accuracy"}, l.extraCols...)
		if err := l.writer.Write(header); err != nil {
			return errors.Wrap(err, "metrics: write header")
		}
	} else if r.Epoch != l.nextEpoch {
		return errors.Errorf("metrics: epoch %d out of order, expected %d", r.Epoch, l.nextEpoch)
	}
	if len(r.Extra) != len(l.extraCols) {
		return errors.Errorf("metrics: record carries %d extra metrics, the log has %d extra columns",
			len(r.Extra), len(l.extraCols))
	}

	row := make([]string, 0, 3+len(l.extraCols))
	row = append(row,
		strconv.Itoa(r.Epoch),
		strconv.FormatFloat(r.Loss, 'g', -1, 64),
		strconv.FormatFloat(r.Accuracy, 'g', -1, 64),
	)
	for _, k := range l.extraCols {
		v, ok := r.Extra[k]
		if !ok {
			return errors.Errorf("metrics: record missing extra metric %q", k)
		}
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	if err := l.writer.Write(row); err != nil {
		return errors.Wrap(err, "metrics: write row")
	}
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		return errors.Wrap(err, "metrics: flush")
	}
	l.started = true
	l.nextEpoch = r.Epoch + 1
	return nil
}

// Close flushes and closes the underlying file.
func (l *EpochLog) Close() error {
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}

// ReadEpochLog parses a metrics.csv back into records, for tests and
// the plot/inspect tooling.
func ReadEpochLog(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "metrics: open %s", path)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "metrics: parse csv")
	}
	if len(rows) == 0 {
		return nil, errors.New("metrics: empty log")
	}

	header := rows[0]
	if len(header) < 3 {
		return nil, errors.Errorf("metrics: malformed header %v", header)
	}
	extraCols := header[3:]

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, errors.Errorf("metrics: malformed row %v", row)
		}
		epoch, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, errors.Wrap(err, "metrics: parse epoch")
		}
		loss, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, errors.Wrap(err, "metrics: parse loss")
		}
		acc, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, errors.Wrap(err, "metrics: parse accuracy")
		}
		rec := Record{Epoch: epoch, Loss: loss, Accuracy: acc}
		if len(extraCols) > 0 {
			rec.Extra = make(map[string]float64, len(extraCols))
			for i, name := range extraCols {
				v, err := strconv.ParseFloat(row[3+i], 64)
				if err != nil {
					return nil, errors.Wrapf(err, "metrics: parse %s", name)
				}
				rec.Extra[name] = v
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
