package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RoundingMode controls how attended minutes and the threshold are
// rounded before the pass/fail comparison
type RoundingMode string

const (
	RoundingNone           RoundingMode = "none"
	RoundingCeilAttendance RoundingMode = "ceil_attendance"
	RoundingCeilBoth       RoundingMode = "ceil_both"
)

// Label returns the human-readable form used in the report meta block
func (m RoundingMode) Label() string {
	switch m {
	case RoundingCeilAttendance:
		return "Ceil attendance only"
	case RoundingCeilBoth:
		return "Ceil attendance & threshold"
	default:
		return "None"
	}
}

// DecisionParams control threshold computation and penalty behavior for
// one processing run. Zero values mean "use the documented default".
type DecisionParams struct {
	ThresholdRatio          float64      `json:"threshold_ratio"`
	BufferMinutes           float64      `json:"buffer_minutes"`
	BreakMinutes            float64      `json:"break_minutes"`
	PenaltyToleranceMinutes float64      `json:"penalty_tolerance_minutes"`
	OverrideTotalMinutes    float64      `json:"override_total_minutes"`
	Rounding                RoundingMode `json:"rounding_mode"`
}

// DefaultDecisionParams returns the documented defaults: 80% threshold,
// no buffer, no break, zero penalty tolerance, no rounding.
func DefaultDecisionParams() DecisionParams {
	return DecisionParams{
		ThresholdRatio: 0.8,
		Rounding:       RoundingNone,
	}
}

// Sanitized returns a copy with every malformed field replaced by its
// default. Malformed parameters never fail a run.
func (p DecisionParams) Sanitized() DecisionParams {
	out := p
	if math.IsNaN(out.ThresholdRatio) || math.IsInf(out.ThresholdRatio, 0) || out.ThresholdRatio <= 0 {
		out.ThresholdRatio = 0.8
	}
	out.BufferMinutes = nonNegative(out.BufferMinutes)
	out.BreakMinutes = nonNegative(out.BreakMinutes)
	out.PenaltyToleranceMinutes = nonNegative(out.PenaltyToleranceMinutes)
	out.OverrideTotalMinutes = nonNegative(out.OverrideTotalMinutes)
	switch out.Rounding {
	case RoundingNone, RoundingCeilAttendance, RoundingCeilBoth:
	default:
		out.Rounding = RoundingNone
	}
	return out
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// CoerceDecisionParams parses a JSON parameter object, coercing each
// field independently: a missing or malformed value degrades to its
// default without failing the request. Numeric fields accept both JSON
// numbers and numeric strings.
func CoerceDecisionParams(data []byte) DecisionParams {
	out := DefaultDecisionParams()
	if len(data) == 0 {
		return out
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return out
	}

	if v, ok := toFloat(raw["threshold_ratio"]); ok && v > 0 {
		out.ThresholdRatio = v
	}
	if v, ok := toFloat(raw["buffer_minutes"]); ok && v > 0 {
		out.BufferMinutes = v
	}
	if v, ok := toFloat(raw["break_minutes"]); ok && v > 0 {
		out.BreakMinutes = v
	}
	if v, ok := toFloat(raw["penalty_tolerance_minutes"]); ok && v > 0 {
		out.PenaltyToleranceMinutes = v
	}
	if v, ok := toFloat(raw["override_total_minutes"]); ok && v > 0 {
		out.OverrideTotalMinutes = v
	}
	if s, ok := raw["rounding_mode"].(string); ok {
		switch RoundingMode(strings.TrimSpace(s)) {
		case RoundingCeilAttendance:
			out.Rounding = RoundingCeilAttendance
		case RoundingCeilBoth:
			out.Rounding = RoundingCeilBoth
		}
	}

	return out.Sanitized()
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Exemption waives specific flags for one identity key. The booleans are
// independent; none of them change the minutes computation.
type Exemption struct {
	Naming    bool `json:"naming"`
	Overlap   bool `json:"overlap"`
	Reconnect bool `json:"reconnect"`
}

// ExemptionMap maps identity keys to their exemption flags
type ExemptionMap map[string]Exemption

// CoerceExemptions parses the exemptions JSON object, degrading to an
// empty map on any malformed input
func CoerceExemptions(data []byte) ExemptionMap {
	if len(data) == 0 {
		return ExemptionMap{}
	}
	var out ExemptionMap
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		return ExemptionMap{}
	}
	return out
}
