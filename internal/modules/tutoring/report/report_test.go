package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/pathrecon"
)

func risk(typ types.RiskType, sev types.Severity, dim types.Dimension) types.Risk {
	return types.Risk{ID: uuid.New(), Type: typ, Severity: sev, Dimension: dim}
}

func TestAssemble_ScoresAndLevel(t *testing.T) {
	in := Input{
		SessionID: uuid.New(),
		Risks: []types.Risk{
			risk(types.RiskCognitiveDelegation, types.SeverityHigh, types.DimensionCognitive),
			risk(types.RiskAIDependency, types.SeverityMedium, types.DimensionCognitive),
			risk(types.RiskCodeDuplication, types.SeverityMedium, types.DimensionTechnical),
		},
		Semaphore:  types.SemaphoreRed,
		FinalState: types.StateStuck,
		Path:       pathrecon.Path{Trend: types.TrendWorsening},
	}
	rep := Assemble(DefaultConfig(), in)
	if got := rep.Score(types.DimensionCognitive); got != 8.5 {
		t.Fatalf("cognitive: expected 8.5 got %v", got)
	}
	if got := rep.Score(types.DimensionGovernance); got != 3 {
		t.Fatalf("governance: expected 3 got %v", got)
	}
	if got := rep.Score(types.DimensionTechnical); got != 2.5 {
		t.Fatalf("technical: expected 2.5 got %v", got)
	}
	if rep.Level != LevelCritical {
		t.Fatalf("expected critical, got %s", rep.Level)
	}
	if rep.BySeverity[types.SeverityMedium] != 2 || rep.ByType[types.RiskCognitiveDelegation] != 1 || rep.Unresolved != 3 {
		t.Fatalf("unexpected counts %+v %+v %d", rep.BySeverity, rep.ByType, rep.Unresolved)
	}
	if rep.Trend != types.TrendWorsening {
		t.Fatalf("trend not carried")
	}
}

func TestAssemble_CapsAtTen(t *testing.T) {
	var rs []types.Risk
	for i := 0; i < 5; i++ {
		rs = append(rs, risk(types.RiskUnsafeCode, types.SeverityCritical, types.DimensionTechnical))
	}
	rep := Assemble(DefaultConfig(), Input{Risks: rs})
	if rep.Score(types.DimensionTechnical) != MaxScore {
		t.Fatalf("expected cap at %v, got %v", MaxScore, rep.Score(types.DimensionTechnical))
	}
}

func TestAssemble_Levels(t *testing.T) {
	cases := []struct {
		risks []types.Risk
		sem   types.SemaphoreState
		want  Level
	}{
		{nil, types.SemaphoreGreen, LevelLow},
		{[]types.Risk{risk(types.RiskMissingErrorHandling, types.SeverityLow, types.DimensionTechnical)}, types.SemaphoreYellow, LevelLow},
		{[]types.Risk{risk(types.RiskSessionOverlong, types.SeverityMedium, types.DimensionGovernance)}, types.SemaphoreGreen, LevelLow},
		{nil, types.SemaphoreRed, LevelModerate},
		{[]types.Risk{risk(types.RiskSuspiciousSpeed, types.SeverityHigh, types.DimensionEthical)}, types.SemaphoreGreen, LevelModerate},
		{[]types.Risk{risk(types.RiskSuspiciousSpeed, types.SeverityHigh, types.DimensionEthical), risk(types.RiskSuspiciousSpeed, types.SeverityLow, types.DimensionEthical)}, types.SemaphoreGreen, LevelHigh},
	}
	for i, tc := range cases {
		if got := Assemble(DefaultConfig(), Input{Risks: tc.risks, Semaphore: tc.sem}).Level; got != tc.want {
			t.Fatalf("case %d: expected %s got %s", i, tc.want, got)
		}
	}
}

func TestAssemble_ResolvedRisksStillScoreButNotUnresolved(t *testing.T) {
	r := risk(types.RiskUnsafeCode, types.SeverityHigh, types.DimensionTechnical)
	r.Resolved = true
	rep := Assemble(DefaultConfig(), Input{Risks: []types.Risk{r}})
	if rep.Unresolved != 0 || rep.Score(types.DimensionTechnical) != 5 {
		t.Fatalf("unexpected %+v", rep)
	}
}

func TestAssemble_Pure(t *testing.T) {
	in := Input{
		Risks:     []types.Risk{risk(types.RiskUncriticalAcceptance, types.SeverityMedium, types.DimensionEpistemic)},
		Semaphore: types.SemaphoreYellow,
	}
	if diff := cmp.Diff(Assemble(DefaultConfig(), in), Assemble(DefaultConfig(), in)); diff != "" {
		t.Fatalf("assemble not deterministic:\n%s", diff)
	}
	rep := Assemble(DefaultConfig(), in)
	if len(rep.Scores) != len(types.Dimensions) {
		t.Fatalf("every dimension must be scored")
	}
}

func TestAssemble_UnknownSemaphoreScoresAsRed(t *testing.T) {
	red := Assemble(DefaultConfig(), Input{Semaphore: types.SemaphoreRed})
	for _, sem := range []types.SemaphoreState{"", "AMBER"} {
		rep := Assemble(DefaultConfig(), Input{Semaphore: sem})
		if rep.Semaphore != types.SemaphoreRed {
			t.Fatalf("semaphore %q: expected RED in report, got %q", sem, rep.Semaphore)
		}
		if got, want := rep.Score(types.DimensionGovernance), red.Score(types.DimensionGovernance); got != want {
			t.Fatalf("semaphore %q: governance expected %v got %v", sem, want, got)
		}
		if rep.Level != LevelModerate {
			t.Fatalf("semaphore %q: expected moderate, got %s", sem, rep.Level)
		}
	}
}
