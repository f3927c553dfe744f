package tutoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-governor/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/pkg/dbctx"
	apperr "github.com/yungbote/neurobridge-governor/internal/pkg/errors"
)

func TestTraceRepo_RoundTripKeepsOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	store := NewStore(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	sessionID := uuid.New()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	seq := testutil.Traces(sessionID, start, 6)
	// two traces sharing a timestamp must come back in commit order
	seq[3].Timestamp = seq[2].Timestamp
	ai := 0.25
	seq[4].AIInvolvement = &ai
	seq[5].ParentID = testutil.PtrUUID(seq[4].ID)

	for _, tr := range seq {
		if err := store.AppendTrace(dbc, tr); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	other := testutil.Traces(uuid.New(), start, 2)
	for _, tr := range other {
		if err := store.AppendTrace(dbc, tr); err != nil {
			t.Fatalf("append other: %v", err)
		}
	}

	got, err := store.ListTracesBySession(dbc, sessionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff(seq, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if n, err := store.Traces.CountBySession(dbc, sessionID); err != nil || n != 6 {
		t.Fatalf("expected 6 traces, got %d (%v)", n, err)
	}
}

func TestRiskRepo_CreateIsIdempotentAndResolvable(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	store := NewStore(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	sessionID := uuid.New()
	traceIDs := []uuid.UUID{uuid.New(), uuid.New()}
	risks := []types.Risk{
		{
			ID:              types.RiskID(sessionID, types.RiskCodeDuplication, traceIDs),
			SessionID:       sessionID,
			Type:            types.RiskCodeDuplication,
			Severity:        types.SeverityMedium,
			Dimension:       types.DimensionTechnical,
			Evidence:        []string{"2 submissions share the same normalized body"},
			TraceIDs:        traceIDs,
			RootCause:       "resubmitted",
			Recommendations: []string{"ask what changed"},
		},
		{
			ID:              types.RiskID(sessionID, types.RiskSuspiciousSpeed, traceIDs[:1]),
			SessionID:       sessionID,
			Type:            types.RiskSuspiciousSpeed,
			Severity:        types.SeverityHigh,
			Dimension:       types.DimensionEthical,
			Evidence:        []string{"150 characters in 2s"},
			TraceIDs:        traceIDs[:1],
			RootCause:       "fast",
			Recommendations: []string{"walk through it"},
		},
	}
	if err := store.CreateRisks(dbc, risks); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.ResolveRisk(dbc, risks[0].ID, "discussed with learner"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// a rerun of the same batch must not reset the resolution
	if err := store.CreateRisks(dbc, risks); err != nil {
		t.Fatalf("create again: %v", err)
	}

	got, err := store.ListRisksBySession(dbc, sessionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 risks, got %d", len(got))
	}
	want := append([]types.Risk(nil), risks...)
	want[0].Resolved = true
	want[0].ResolutionNotes = "discussed with learner"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("risks mismatch (-want +got):\n%s", diff)
	}

	open, err := store.Risks.ListUnresolved(dbc, sessionID)
	if err != nil || len(open) != 1 || open[0].ID != risks[1].ID {
		t.Fatalf("expected only the speed risk unresolved, got %+v (%v)", open, err)
	}
	if err := store.ResolveRisk(dbc, uuid.New(), "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
