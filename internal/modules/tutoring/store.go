package tutoring

import (
	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/pkg/dbctx"
)

// Store is the persistence collaborator. The core only appends traces and
// risks; resolution happens outside the batch run.
type Store interface {
	AppendTrace(dbc dbctx.Context, t *types.InteractionTrace) error
	ListTracesBySession(dbc dbctx.Context, sessionID uuid.UUID) (types.TraceSequence, error)
	CreateRisks(dbc dbctx.Context, risks []types.Risk) error
	ListRisksBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]types.Risk, error)
}
