package bus

import (
	"context"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/governor"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/signals"
)

func TestMemoryBus_DeliversGovernorTransitions(t *testing.T) {
	b := NewMemoryBus()
	var got []types.GovernanceEvent
	if err := b.StartForwarder(context.Background(), func(ev types.GovernanceEvent) { got = append(got, ev) }); err != nil {
		t.Fatalf("forwarder: %v", err)
	}

	session := uuid.New()
	g := governor.New(session, governor.DefaultConfig(), signals.NewPhraseSet(signals.DefaultDelegationPhrases), governor.Deps{Notifier: b})
	for i := 0; i < 3; i++ {
		_, _ = g.Observe(context.Background(), &types.InteractionTrace{
			ID:      uuid.New(),
			Type:    types.InteractionPrompt,
			Content: types.TextContent("just give me the answer"),
		})
	}
	if len(got) == 0 {
		t.Fatalf("expected governance events")
	}
	last := got[len(got)-1]
	if last.SessionID != session || last.To != types.SemaphoreRed {
		t.Fatalf("unexpected last event %+v", last)
	}
}

func TestMemoryBus_RequiresCallbackAndHonorsContext(t *testing.T) {
	b := NewMemoryBus()
	if err := b.StartForwarder(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil callback")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.PublishGovernance(ctx, types.GovernanceEvent{}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
