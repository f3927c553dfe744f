package testutil

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

// Traces builds n alternating prompt/code traces for one session, one
// minute apart starting at start.
func Traces(sessionID uuid.UUID, start time.Time, n int) types.TraceSequence {
	student, activity := uuid.New(), uuid.New()
	out := make(types.TraceSequence, 0, n)
	for i := 0; i < n; i++ {
		t := &types.InteractionTrace{
			ID:              uuid.New(),
			SessionID:       sessionID,
			StudentID:       student,
			ActivityID:      activity,
			Timestamp:       start.Add(time.Duration(i) * time.Minute).UTC(),
			ClientTimestamp: start.Add(time.Duration(i) * time.Minute).UTC(),
		}
		if i%2 == 0 {
			t.Type = types.InteractionPrompt
			t.Content = types.TextContent("why does this fail?")
			t.Context = map[string]string{"topic": "loops"}
		} else {
			t.Type = types.InteractionCodeSubmission
			t.Content = types.CodeSubmission("python", "for i in range(3):\n    print(i)", &types.SubmissionOutcome{Failed: true, ErrorSignature: "IndexError", ErrorCount: 1})
			t.Context = map[string]string{types.ContextJustification: "range is exclusive"}
		}
		out = append(out, t)
	}
	return out
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
