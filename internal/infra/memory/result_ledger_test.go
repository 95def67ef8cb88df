package memory

import (
	"context"
	"testing"
	"time"
)

func TestResultLedgerRecordsAndRanks(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	ledger := NewResultLedgerWithClock(func() time.Time { return at })

	_, _ = ledger.Record(ctx, "alice", "History", 1, []bool{true, false})
	_, _ = ledger.Record(ctx, "bob", "Geography", 2, []bool{true, true})
	r, _ := ledger.Record(ctx, "Alice", "Mixed Quiz", 2, []bool{true, true, false})

	if r.Date != "2024-03-01 09:30:00" {
		t.Fatalf("unexpected timestamp %q", r.Date)
	}
	if ledger.Len() != 3 {
		t.Fatalf("expected 3 results, got %d", ledger.Len())
	}

	mine, _ := ledger.ResultsByUser(ctx, "ALICE")
	if len(mine) != 2 || mine[0].Topic != "History" || mine[1].Topic != "Mixed Quiz" {
		t.Fatalf("unexpected history %+v", mine)
	}

	top, _ := ledger.TopScores(ctx, 2)
	if len(top) != 2 || top[0].Username != "bob" || top[1].Username != "Alice" {
		t.Fatalf("expected bob then Alice (stable ties), got %+v", top)
	}
}
