// Package performance computes the daily percentage return and appends it to
// the performance log, one line per session day.
package performance

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/mbocharov/trendtrader/internal/domain"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// Entry is one recorded day in the performance log.
type Entry struct {
	Date    time.Time
	Percent decimal.Decimal
}

// Recorder appends daily returns to a plain text log. The file has no header
// and never ends with a trailing newline: entries after the first are written
// newline-prefixed instead.
type Recorder struct {
	path      string
	precision int32
}

// NewRecorder validates the rounding precision and returns a recorder.
func NewRecorder(path string, precision int32) (*Recorder, error) {
	if path == "" {
		return nil, errors.New("performance log path is required")
	}
	if precision < 0 || precision > 8 {
		return nil, errors.Errorf("precision must be between 0 and 8, got %d", precision)
	}
	return &Recorder{path: path, precision: precision}, nil
}

// Path returns the log file location.
func (r *Recorder) Path() string {
	return r.path
}

// DailyReturn computes the session's percentage return against the prior
// close equity, rounded to the configured precision.
func (r *Recorder) DailyReturn(snap domain.EquitySnapshot) (decimal.Decimal, error) {
	if snap.LastEquity.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, errors.Errorf("prior equity must be positive, got %s", snap.LastEquity.String())
	}
	return snap.Equity.Sub(snap.LastEquity).Div(snap.LastEquity).Mul(hundred).Round(r.precision), nil
}

// Append writes one entry. Prior entries are never touched; the log is
// created on first use.
func (r *Recorder) Append(date time.Time, percent decimal.Decimal) error {
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open performance log %s", r.path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "failed to stat performance log")
	}

	line := date.Format(dateLayout) + "," + percent.StringFixed(r.precision)
	if info.Size() > 0 {
		line = "\n" + line
	}

	if _, err := f.WriteString(line); err != nil {
		return errors.Wrap(err, "failed to append performance entry")
	}
	return nil
}

// Entries reads the full log back in insertion order.
func (r *Recorder) Entries() ([]Entry, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read performance log %s", r.path)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	lines := strings.Split(string(raw), "\n")
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		date, percent, ok := strings.Cut(line, ",")
		if !ok {
			return nil, errors.Errorf("malformed performance entry: %q", line)
		}
		day, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed date in entry %q", line)
		}
		value, err := decimal.NewFromString(percent)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed percent in entry %q", line)
		}
		entries = append(entries, Entry{Date: day, Percent: value})
	}
	return entries, nil
}
