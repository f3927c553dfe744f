package tutoring

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

// Store adapts the trace and risk repos to the session store the tutoring
// module depends on.
type Store struct {
	Traces TraceRepo
	Risks  RiskRepo
}

func NewStore(db *gorm.DB, baseLog *logger.Logger) *Store {
	return &Store{
		Traces: NewTraceRepo(db, baseLog),
		Risks:  NewRiskRepo(db, baseLog),
	}
}

func (s *Store) AppendTrace(dbc dbctx.Context, t *types.InteractionTrace) error {
	return s.Traces.Append(dbc, t)
}

func (s *Store) ListTracesBySession(dbc dbctx.Context, sessionID uuid.UUID) (types.TraceSequence, error) {
	return s.Traces.ListBySession(dbc, sessionID)
}

func (s *Store) CreateRisks(dbc dbctx.Context, risks []types.Risk) error {
	return s.Risks.Create(dbc, risks)
}

func (s *Store) ListRisksBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]types.Risk, error) {
	return s.Risks.ListBySession(dbc, sessionID)
}

func (s *Store) ResolveRisk(dbc dbctx.Context, id uuid.UUID, notes string) error {
	return s.Risks.Resolve(dbc, id, notes)
}
