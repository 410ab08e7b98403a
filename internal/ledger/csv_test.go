package ledger

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/config"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse ledger: %v", err)
	}
	return rows
}

func TestNewRecord(t *testing.T) {
	ts := time.Date(2026, 10, 16, 8, 5, 9, 0, time.Local)

	rec := NewRecord("Alice", ts)

	if rec.Name != "Alice" || rec.Date != "2026-10-16" || rec.Time != "08:05:09" {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestOpenCSV_CreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "attendance.csv")

	if _, err := OpenCSV(path); err != nil {
		t.Fatalf("OpenCSV failed: %v", err)
	}

	rows := readRows(t, path)
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
	if rows[0][0] != "Name" || rows[0][1] != "Date" || rows[0][2] != "Time" {
		t.Errorf("unexpected header %v", rows[0])
	}
}

func TestOpenCSV_KeepsExistingRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	existing := "Name,Date,Time\nBob,2026-10-15,17:00:00\n"
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := OpenCSV(path); err != nil {
		t.Fatalf("OpenCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != existing {
		t.Errorf("existing ledger was modified: %q", data)
	}
}

func TestCSV_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	sink, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV failed: %v", err)
	}
	ctx := context.Background()

	records := []Record{
		{Name: "Alice", Date: "2026-10-16", Time: "09:00:00"},
		{Name: "Novák, Jan", Date: "2026-10-16", Time: "09:00:05"},
		{Name: "Alice", Date: "2026-10-16", Time: "09:01:10"},
	}
	for _, rec := range records {
		if err := sink.Append(ctx, rec); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	rows := readRows(t, path)
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	for i, rec := range records {
		row := rows[i+1]
		if row[0] != rec.Name || row[1] != rec.Date || row[2] != rec.Time {
			t.Errorf("row %d = %v, want %+v", i+1, row, rec)
		}
	}
}

func TestCSV_AppendFailsWhenFileRemoved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "attendance.csv")
	sink, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV failed: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}

	if err := sink.Append(context.Background(), Record{Name: "Alice"}); err == nil {
		t.Error("expected error when the ledger file is gone")
	}
}

func TestOpen_Drivers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")

	sink, err := Open(context.Background(), &config.LedgerConfig{Driver: "csv", File: path})
	if err != nil {
		t.Fatalf("Open csv failed: %v", err)
	}
	if _, ok := sink.(*CSV); !ok {
		t.Errorf("expected *CSV sink, got %T", sink)
	}

	if _, err := Open(context.Background(), &config.LedgerConfig{Driver: "sqlite"}); err == nil {
		t.Error("expected error for unknown driver")
	}
	if _, err := Open(context.Background(), &config.LedgerConfig{Driver: "postgres"}); err == nil {
		t.Error("expected error for postgres without URL")
	}
}
