package tutoring

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

type TraceRepo interface {
	Append(dbc dbctx.Context, t *types.InteractionTrace) error
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) (types.TraceSequence, error)
	CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error)
}

type traceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTraceRepo(db *gorm.DB, baseLog *logger.Logger) TraceRepo {
	return &traceRepo{
		db:  db,
		log: baseLog.With("repo", "TraceRepo"),
	}
}

// Append stores t after the last trace of its session.
func (r *traceRepo) Append(dbc dbctx.Context, t *types.InteractionTrace) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if t == nil {
		return fmt.Errorf("append trace: nil trace")
	}
	rec, err := toTraceRecord(t)
	if err != nil {
		return err
	}
	return transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var next struct{ N int }
		if err := txx.Model(&types.TraceRecord{}).
			Select("COALESCE(MAX(position) + 1, 0) AS n").
			Where("session_id = ?", t.SessionID).
			Scan(&next).Error; err != nil {
			return err
		}
		rec.Position = next.N
		return txx.Create(rec).Error
	})
}

func (r *traceRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) (types.TraceSequence, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var recs []*types.TraceRecord
	if sessionID == uuid.Nil {
		return types.TraceSequence{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("occurred_at ASC, position ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make(types.TraceSequence, 0, len(recs))
	for _, rec := range recs {
		t, err := fromTraceRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *traceRepo) CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.TraceRecord{}).
		Where("session_id = ?", sessionID).
		Count(&n).Error
	return n, err
}

func toTraceRecord(t *types.InteractionTrace) (*types.TraceRecord, error) {
	rec := &types.TraceRecord{
		ID:              t.ID,
		SessionID:       t.SessionID,
		StudentID:       t.StudentID,
		ActivityID:      t.ActivityID,
		Timestamp:       t.Timestamp.UTC(),
		ClientTimestamp: t.ClientTimestamp.UTC(),
		Type:            string(t.Type),
		ContentKind:     string(t.Content.Kind),
		Text:            t.Content.Text,
		AIInvolvement:   t.AIInvolvement,
		Context:         datatypes.NewJSONType(t.Context),
		ParentID:        t.ParentID,
	}
	if c := t.Content.Code; c != nil {
		rec.Language = c.Language
		rec.Source = c.Source
		if c.Outcome != nil {
			b, err := json.Marshal(c.Outcome)
			if err != nil {
				return nil, fmt.Errorf("encode outcome: %w", err)
			}
			rec.Outcome = datatypes.JSON(b)
		}
	}
	return rec, nil
}

func fromTraceRecord(rec *types.TraceRecord) (*types.InteractionTrace, error) {
	t := &types.InteractionTrace{
		ID:              rec.ID,
		SessionID:       rec.SessionID,
		StudentID:       rec.StudentID,
		ActivityID:      rec.ActivityID,
		Timestamp:       rec.Timestamp.UTC(),
		ClientTimestamp: rec.ClientTimestamp.UTC(),
		Type:            types.InteractionType(rec.Type),
		AIInvolvement:   rec.AIInvolvement,
		Context:         rec.Context.Data(),
		ParentID:        rec.ParentID,
	}
	switch types.ContentKind(rec.ContentKind) {
	case types.ContentCode:
		var outcome *types.SubmissionOutcome
		if len(rec.Outcome) > 0 && string(rec.Outcome) != "null" {
			outcome = &types.SubmissionOutcome{}
			if err := json.Unmarshal(rec.Outcome, outcome); err != nil {
				return nil, fmt.Errorf("decode outcome of trace %s: %w", rec.ID, err)
			}
		}
		t.Content = types.CodeSubmission(rec.Language, rec.Source, outcome)
	default:
		t.Content = types.TextContent(rec.Text)
	}
	return t, nil
}
