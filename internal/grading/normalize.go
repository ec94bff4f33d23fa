package grading

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gradebook_backend/internal/model"
)

// Scale is the point scale every grade is rescaled onto.
const Scale = 20.0

// FilterPeriod keeps the raw grades that belong to period. Yearly periods
// never keep any grade.
func FilterPeriod(period model.Period, raw []model.RawGrade) []model.RawGrade {
	if period.Yearly {
		return nil
	}
	kept := make([]model.RawGrade, 0, len(raw))
	for _, g := range raw {
		if g.Period.ID == period.ID {
			kept = append(kept, g)
		}
	}
	return kept
}

// GradeID derives a grade id from subject, date and comment. Two grades
// sharing all three collide, so the upstream id wins when present.
func GradeID(g model.RawGrade) string {
	if g.ID != "" {
		return g.ID
	}
	comment := g.Comment
	if comment == "" {
		comment = "none"
	}
	return fmt.Sprintf("%s:%d/%s", g.Subject.Name, toMillis(g.Date), comment)
}

func coefficientOf(g model.RawGrade) float64 {
	if g.Coefficient == nil {
		return 1
	}
	c := *g.Coefficient
	if c == 0 || math.IsNaN(c) || math.IsInf(c, 0) {
		return 1
	}
	return c
}

// parseOutOf returns the denominator of a grade and whether it can be used.
// An empty value means the default scale.
func parseOutOf(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Scale, true
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

func rescale(v, outOf float64) float64 {
	if outOf == Scale {
		return v
	}
	return v / outOf * Scale
}

// Normalize converts one raw grade into a canonical grade on the 20 point
// scale. A grade with an unusable denominator is kept but marked not graded,
// so aggregation skips it.
func Normalize(g model.RawGrade) model.Grade {
	note := 0.0
	if g.Value != nil {
		note = g.Value.Points
	}

	outOf, ok := parseOutOf(g.OutOf)

	student := model.StudentValue{GradeValue: DecodeValue(g.Value)}
	student.Value = note
	if ok {
		student.NormalizedValue = rescale(note, outOf)
	} else {
		student.Information = model.NotGraded
	}

	outOfValue := plainValue(outOf)
	outOfValue.Disabled = !ok

	return model.Grade{
		ID:          GradeID(g),
		SubjectName: g.Subject.Name,
		Description: g.Comment,
		Timestamp:   toMillis(g.Date),
		SubjectFile: model.Attachment{
			Type: model.AttachmentLink,
			Name: "Sujet",
			URL:  g.SubjectFilePath,
		},
		CorrectionFile: model.Attachment{
			Type: model.AttachmentLink,
			Name: "Corrigé",
			URL:  g.CorrectionFilePath,
		},
		IsBonus:     false,
		IsOptional:  g.IsOptional,
		OutOf:       outOfValue,
		Coefficient: coefficientOf(g),
		Student:     student,
		Average:     DecodeValue(g.Average),
		Max:         DecodeValue(g.Max),
		Min:         DecodeValue(g.Min),
	}
}

// NormalizePeriod filters raw grades to period and normalizes them.
func NormalizePeriod(period model.Period, raw []model.RawGrade) []model.Grade {
	kept := FilterPeriod(period, raw)
	grades := make([]model.Grade, 0, len(kept))
	for _, g := range kept {
		grades = append(grades, Normalize(g))
	}
	return grades
}
