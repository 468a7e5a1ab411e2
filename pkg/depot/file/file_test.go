package file

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lamassuiot/ca-material-validator/pkg/depot"

	"github.com/go-kit/kit/log"
)

func TestJournalRoundTrip(t *testing.T) {
	journal := NewFile(filepath.Join(t.TempDir(), "runs.journal"), log.NewNopLogger())

	first := &depot.Run{StartedAt: time.Now().UTC().Add(-time.Minute), Subject: "Old CA", Valid: false, Errors: 2, Warnings: 1}
	second := &depot.Run{StartedAt: time.Now().UTC(), Subject: "New CA", Valid: true}
	if err := journal.InsertRun(first); err != nil {
		t.Fatalf("InsertRun returned %s", err)
	}
	if err := journal.InsertRun(second); err != nil {
		t.Fatalf("InsertRun returned %s", err)
	}

	runs, err := journal.GetRuns(10)
	if err != nil {
		t.Fatalf("GetRuns returned %s", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Got %d runs; want 2", len(runs))
	}
	if runs[0].Subject != "New CA" || !runs[0].Valid {
		t.Errorf("Newest run is %+v", runs[0])
	}
	if runs[1].Subject != "Old CA" || runs[1].Errors != 2 || runs[1].Warnings != 1 {
		t.Errorf("Oldest run is %+v", runs[1])
	}

	limited, err := journal.GetRuns(1)
	if err != nil {
		t.Fatalf("GetRuns returned %s", err)
	}
	if len(limited) != 1 || limited[0].Subject != "New CA" {
		t.Errorf("Limited runs are %+v", limited)
	}
}

func TestEmptyJournal(t *testing.T) {
	journal := NewFile(filepath.Join(t.TempDir(), "runs.journal"), log.NewNopLogger())

	runs, err := journal.GetRuns(10)
	if err != nil {
		t.Fatalf("GetRuns returned %s", err)
	}
	if len(runs) != 0 {
		t.Errorf("Got %d runs from empty journal; want 0", len(runs))
	}
}
