package tutoring

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/pkg/dbctx"
	apperr "github.com/yungbote/neurobridge-governor/internal/pkg/errors"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

type RiskRepo interface {
	Create(dbc dbctx.Context, risks []types.Risk) error
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]types.Risk, error)
	ListUnresolved(dbc dbctx.Context, sessionID uuid.UUID) ([]types.Risk, error)
	Resolve(dbc dbctx.Context, id uuid.UUID, notes string) error
}

type riskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRiskRepo(db *gorm.DB, baseLog *logger.Logger) RiskRepo {
	return &riskRepo{
		db:  db,
		log: baseLog.With("repo", "RiskRepo"),
	}
}

// Create inserts risks, skipping ids already stored. Risk ids are derived
// from their content, so rerunning a batch leaves earlier resolutions intact.
func (r *riskRepo) Create(dbc dbctx.Context, risks []types.Risk) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(risks) == 0 {
		return nil
	}
	recs := make([]*types.RiskRecord, 0, len(risks))
	for i, rk := range risks {
		recs = append(recs, toRiskRecord(rk, i))
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&recs).Error
}

func (r *riskRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]types.Risk, error) {
	return r.list(dbc, sessionID, false)
}

func (r *riskRepo) ListUnresolved(dbc dbctx.Context, sessionID uuid.UUID) ([]types.Risk, error) {
	return r.list(dbc, sessionID, true)
}

func (r *riskRepo) list(dbc dbctx.Context, sessionID uuid.UUID, unresolvedOnly bool) ([]types.Risk, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Where("session_id = ?", sessionID)
	if unresolvedOnly {
		q = q.Where("resolved = ?", false)
	}
	var recs []*types.RiskRecord
	if err := q.Order("created_at ASC, ordinal ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]types.Risk, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromRiskRecord(rec))
	}
	return out, nil
}

// Resolve marks a risk resolved. It is the only mutation a stored risk
// accepts.
func (r *riskRepo) Resolve(dbc dbctx.Context, id uuid.UUID, notes string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.RiskRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resolved":         true,
			"resolution_notes": notes,
			"resolved_at":      now,
			"updated_at":       now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("risk %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func toRiskRecord(rk types.Risk, ordinal int) *types.RiskRecord {
	return &types.RiskRecord{
		ID:              rk.ID,
		SessionID:       rk.SessionID,
		Type:            string(rk.Type),
		Severity:        string(rk.Severity),
		Dimension:       string(rk.Dimension),
		Evidence:        datatypes.JSONSlice[string](rk.Evidence),
		TraceIDs:        datatypes.JSONSlice[uuid.UUID](rk.TraceIDs),
		RootCause:       rk.RootCause,
		Recommendations: datatypes.JSONSlice[string](rk.Recommendations),
		Ordinal:         ordinal,
		Resolved:        rk.Resolved,
		ResolutionNotes: rk.ResolutionNotes,
	}
}

func fromRiskRecord(rec *types.RiskRecord) types.Risk {
	return types.Risk{
		ID:              rec.ID,
		SessionID:       rec.SessionID,
		Type:            types.RiskType(rec.Type),
		Severity:        types.Severity(rec.Severity),
		Dimension:       types.Dimension(rec.Dimension),
		Evidence:        []string(rec.Evidence),
		TraceIDs:        []uuid.UUID(rec.TraceIDs),
		RootCause:       rec.RootCause,
		Recommendations: []string(rec.Recommendations),
		Resolved:        rec.Resolved,
		ResolutionNotes: rec.ResolutionNotes,
	}
}
