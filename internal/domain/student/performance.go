package student

import (
	"fmt"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERFORMANCE LABELS
// ══════════════════════════════════════════════════════════════════════════════

// Performance is a qualitative bucket derived from an average.
type Performance string

const (
	PerformanceExcellent    Performance = "Excellent"
	PerformanceGood         Performance = "Good"
	PerformanceAverage      Performance = "Average"
	PerformanceBelowAverage Performance = "Below Average"
	PerformancePoor         Performance = "Poor"

	PerformancePass Performance = "PASS"
	PerformanceFail Performance = "FAIL"
)

// String returns the label text.
func (p Performance) String() string {
	return string(p)
}

// LabelPolicy selects the thresholds used to turn an average into a label.
type LabelPolicy string

const (
	// PolicyTiered uses five bands: 90, 80, 70, 60.
	PolicyTiered LabelPolicy = "tiered"
	// PolicyPassFail uses a single threshold at 50.
	PolicyPassFail LabelPolicy = "pass_fail"
)

// PassMark is the lowest average that counts as a pass under PolicyPassFail.
const PassMark = 50.0

type threshold struct {
	min   float64
	label Performance
}

// Ordered from the highest band down; the first band whose min is reached wins.
var tieredBands = []threshold{
	{min: 90, label: PerformanceExcellent},
	{min: 80, label: PerformanceGood},
	{min: 70, label: PerformanceAverage},
	{min: 60, label: PerformanceBelowAverage},
}

// IsValid checks that the policy is known.
func (p LabelPolicy) IsValid() bool {
	switch p {
	case PolicyTiered, PolicyPassFail:
		return true
	default:
		return false
	}
}

// String returns the policy name.
func (p LabelPolicy) String() string {
	return string(p)
}

// Classify maps an average to a label. It is total: any input, including
// values below zero or NaN, lands in the lowest bucket.
// An unknown policy behaves like PolicyTiered.
func (p LabelPolicy) Classify(average float64) Performance {
	if p == PolicyPassFail {
		if average >= PassMark {
			return PerformancePass
		}
		return PerformanceFail
	}

	for _, band := range tieredBands {
		if average >= band.min {
			return band.label
		}
	}
	return PerformancePoor
}

// Labels lists every label the policy can produce, best first.
func (p LabelPolicy) Labels() []Performance {
	if p == PolicyPassFail {
		return []Performance{PerformancePass, PerformanceFail}
	}
	labels := make([]Performance, 0, len(tieredBands)+1)
	for _, band := range tieredBands {
		labels = append(labels, band.label)
	}
	return append(labels, PerformancePoor)
}

// ParseLabelPolicy parses a policy name; "pass-fail" and "passfail" are accepted
// as spellings of pass_fail.
func ParseLabelPolicy(s string) (LabelPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tiered":
		return PolicyTiered, nil
	case "pass_fail", "pass-fail", "passfail":
		return PolicyPassFail, nil
	default:
		return "", shared.NewDomainError("student", "ParseLabelPolicy", shared.ErrInvalidFormat,
			fmt.Sprintf("unknown label policy %q", s))
	}
}
