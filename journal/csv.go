package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	w *csv.Writer
	f *os.File
}

func NewCSV(path string) (*CSVJournal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"event", "order_id", "label", "instrument", "command", "lots", "open_price", "close_price", "pips", "profit_loss", "time"}); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{w: w, f: f}, nil
}

func (j *CSVJournal) RecordOrder(r OrderRecord) error {
	j.w.Write([]string{
		r.Event,
		r.OrderID,
		r.Label,
		r.Instrument,
		r.Command,
		f(r.Lots),
		f(r.OpenPrice),
		f(r.ClosePrice),
		f(r.Pips),
		f(r.ProfitLoss),
		r.Time.Format(time.RFC3339),
	})
	j.w.Flush()
	return j.w.Error()
}

func (j *CSVJournal) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
