package analysisrun

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring"
	apperr "github.com/yungbote/neurobridge-governor/internal/pkg/errors"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

// Analyzer is the batch surface the activity drives.
type Analyzer interface {
	AnalyzeStored(ctx context.Context, sessionID uuid.UUID) (tutoring.Result, error)
}

type Activities struct {
	Log      *logger.Logger
	Analyzer Analyzer
}

func (a *Activities) Analyze(ctx context.Context, sessionID string) (SessionOutcome, error) {
	out := SessionOutcome{SessionID: strings.TrimSpace(sessionID)}
	if a == nil || a.Analyzer == nil {
		return out, fmt.Errorf("analysisrun: activity not configured")
	}
	id, err := uuid.Parse(out.SessionID)
	if err != nil || id == uuid.Nil {
		return out, temporal.NewNonRetryableApplicationError("invalid session id", ErrTypeInvalidSession, err)
	}

	activity.RecordHeartbeat(ctx, out.SessionID)
	res, err := a.Analyzer.AnalyzeStored(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrSessionNotFound) {
			return out, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeSessionNotFound, err)
		}
		if a.Log != nil {
			a.Log.Warn("stored session analysis failed", "session_id", out.SessionID, "error", err.Error())
		}
		return out, err
	}

	rep := res.Report
	out.Level = string(rep.Level)
	out.Semaphore = string(rep.Semaphore)
	out.Trend = string(rep.Trend)
	out.Risks = len(res.Risks)
	out.Unresolved = rep.Unresolved
	for _, s := range rep.Scores {
		if s.Score > out.MaxScore {
			out.MaxScore = s.Score
		}
	}
	return out, nil
}
