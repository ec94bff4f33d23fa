// Package grading turns a raw grade feed into canonical grades and
// weighted averages. Every function here is pure.
package grading

import (
	"time"

	"gradebook_backend/internal/model"
)

// IsKnownKind reports whether kind is one of the statuses the decoder maps
// explicitly. Unknown kinds still decode, as plain numbers.
func IsKnownKind(kind model.GradeKind) bool {
	switch kind {
	case model.KindError, model.KindGrade, model.KindAbsent, model.KindExempted, model.KindNotGraded:
		return true
	}
	return false
}

func decodeKind(kind model.GradeKind) model.GradeInformation {
	switch kind {
	case model.KindAbsent:
		return model.Absent
	case model.KindExempted:
		return model.Exempted
	case model.KindNotGraded:
		return model.NotGraded
	default:
		return model.InformationNone
	}
}

// DecodeValue converts an optional raw mark into a value with status.
// A missing mark is disabled and not graded; an error mark is disabled but
// keeps its points.
func DecodeValue(v *model.RawGradeValue) model.GradeValue {
	if v == nil {
		return model.GradeValue{Disabled: true, Information: model.NotGraded}
	}
	return model.GradeValue{
		Value:       v.Points,
		Disabled:    v.Kind == model.KindError,
		Information: decodeKind(v.Kind),
	}
}

func plainValue(v float64) model.GradeValue {
	return model.GradeValue{Value: v}
}

// DecodePeriod converts a raw period, dates become millisecond timestamps.
func DecodePeriod(p model.RawPeriod) model.Period {
	return model.Period{
		Name:           p.Name,
		ID:             p.ID,
		StartTimestamp: toMillis(p.StartDate),
		EndTimestamp:   toMillis(p.EndDate),
		Yearly:         p.Yearly,
	}
}

func DecodePeriods(raw []model.RawPeriod) []model.Period {
	periods := make([]model.Period, 0, len(raw))
	for _, p := range raw {
		periods = append(periods, DecodePeriod(p))
	}
	return periods
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
