package risk

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/normalization"
)

// qualityDetector inspects code submissions: duplicated bodies, unsafe
// calls and missing error handling. Each submission is normalized and
// fingerprinted exactly once.
type qualityDetector struct {
	cfg          Config
	fingerprints Fingerprinter
}

func (d *qualityDetector) Name() string { return "quality" }

type fingerprintGroup struct {
	ids []uuid.UUID
}

func (d *qualityDetector) Detect(seq types.TraceSequence) ([]types.Risk, error) {
	groups := map[string]*fingerprintGroup{}
	var order []string
	var unsafe, unhandled []types.Risk

	markers := make(map[string]bool, len(d.cfg.ErrorHandlingMarkers))
	for _, m := range d.cfg.ErrorHandlingMarkers {
		markers[strings.ToLower(strings.TrimSpace(m))] = true
	}

	for _, t := range seq {
		if t == nil {
			return nil, fmt.Errorf("nil trace in sequence")
		}
		if t.Type != types.InteractionCodeSubmission {
			continue
		}
		if t.Content.Code == nil {
			return nil, fmt.Errorf("code submission %s has no code content", t.ID)
		}
		src := t.Content.Code.Source
		norm := normalization.CollapseFold(src)
		if norm == "" {
			continue
		}
		fp, err := d.fingerprints.Fingerprint(norm)
		if err != nil {
			return nil, fmt.Errorf("fingerprint %s: %w", t.ID, err)
		}
		g, ok := groups[fp]
		if !ok {
			g = &fingerprintGroup{}
			groups[fp] = g
			order = append(order, fp)
		}
		g.ids = append(g.ids, t.ID)

		if hits := d.unsafeHits(norm); len(hits) > 0 {
			unsafe = append(unsafe, newRisk(seq, types.RiskUnsafeCode, types.SeverityHigh, types.DimensionTechnical,
				[]uuid.UUID{t.ID},
				[]string{"unsafe constructs: " + strings.Join(hits, ", ")},
				"The submission relies on constructs that execute untrusted input or corrupt memory.",
				"Discuss why the construct is unsafe and ask for a safer rewrite.",
			))
		}
		if lines := nonBlankLines(src); lines >= d.cfg.ErrorHandlingMinLines && !hasMarker(src, markers) {
			unhandled = append(unhandled, newRisk(seq, types.RiskMissingErrorHandling, types.SeverityLow, types.DimensionTechnical,
				[]uuid.UUID{t.ID},
				[]string{fmt.Sprintf("%d lines with no error handling", lines)},
				"The submission assumes every operation succeeds.",
				"Ask the learner which operations can fail and how the program should react.",
			))
		}
	}

	var out []types.Risk
	for _, fp := range order {
		g := groups[fp]
		if len(g.ids) < 2 {
			continue
		}
		out = append(out, newRisk(seq, types.RiskCodeDuplication, types.SeverityMedium, types.DimensionTechnical,
			g.ids,
			[]string{
				fmt.Sprintf("%d submissions share the same normalized body", len(g.ids)),
				"fingerprint " + short(fp),
			},
			"The same code was resubmitted without meaningful change.",
			"Ask what the learner expected to change between attempts.",
		))
	}
	out = append(out, unsafe...)
	out = append(out, unhandled...)
	return out, nil
}

func (d *qualityDetector) unsafeHits(norm string) []string {
	var hits []string
	for _, sig := range d.cfg.UnsafeSignatures {
		s := normalization.CollapseFold(sig)
		if s != "" && strings.Contains(norm, s) {
			hits = append(hits, s)
		}
	}
	return hits
}

func nonBlankLines(src string) int {
	n := 0
	for _, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

func hasMarker(src string, markers map[string]bool) bool {
	for _, w := range normalization.Words(src) {
		if markers[w] {
			return true
		}
	}
	return false
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
