// Package export serializes station usage history for offline analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/NJ2612/ev-charge-optimizer/core/model"
)

// WriteJSON writes the usage samples to w as a JSON array.
func WriteJSON(w io.Writer, samples []model.UsageSample) error {
	enc := json.NewEncoder(w)
	return enc.Encode(samples)
}

// WriteCSV writes the usage samples to w in CSV format.
func WriteCSV(w io.Writer, samples []model.UsageSample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"station_id", "timestamp", "load"}); err != nil {
		return err
	}
	for _, s := range samples {
		rec := []string{
			strconv.Itoa(s.StationID),
			s.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(s.Load, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
