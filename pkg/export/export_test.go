package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/NJ2612/ev-charge-optimizer/core/model"
)

var samples = []model.UsageSample{
	{StationID: 1, Timestamp: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), Load: 0.6},
	{StationID: 2, Timestamp: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), Load: 0.25},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, samples); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "station_id,timestamp,load" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "1,2026-03-02T08:00:00Z,0.6" {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, samples); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var got []model.UsageSample
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[1].Load != 0.25 {
		t.Fatalf("unexpected roundtrip: %+v", got)
	}
}
