package sim

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/ichikk/sessionbreakout/market"
)

// LoadCandlesCSV reads a candle series from a CSV file with a header
// and rows of "time,open,high,low,close". Timestamps are RFC 3339.
func LoadCandlesCSV(path string) ([]market.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if len(rows) < 2 {
		return nil, errors.Errorf("%s: no candle rows", path)
	}

	candles := make([]market.Candle, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 5 {
			return nil, errors.Errorf("%s row %d: want 5 columns, got %d", path, i+2, len(row))
		}
		t, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			return nil, errors.Wrapf(err, "%s row %d: time", path, i+2)
		}
		var v [4]float64
		for j := 0; j < 4; j++ {
			v[j], err = strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%s row %d: column %d", path, i+2, j+2)
			}
		}
		candles = append(candles, market.Candle{
			Time:  t.UTC(),
			Open:  v[0],
			High:  v[1],
			Low:   v[2],
			Close: v[3],
		})
	}
	return candles, nil
}
