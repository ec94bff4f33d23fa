package grading

import (
	"testing"
	"time"

	"gradebook_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2024, 10, 7, 8, 0, 0, 0, time.UTC)

func coef(v float64) *float64 { return &v }

func mark(points float64) *model.RawGradeValue {
	return &model.RawGradeValue{Kind: model.KindGrade, Points: points}
}

func rawGrade(subject string, points float64, outOf string) model.RawGrade {
	return model.RawGrade{
		Subject: model.RawSubject{Name: subject},
		Date:    testDate,
		OutOf:   outOf,
		Value:   mark(points),
		Period:  model.RawPeriodRef{ID: "T1"},
	}
}

func TestNormalizeRescalesOntoTwenty(t *testing.T) {
	tests := []struct {
		name   string
		points float64
		outOf  string
		want   float64
	}{
		{"out of twenty keeps the value", 13.5, "20", 13.5},
		{"empty denominator means twenty", 9, "", 9},
		{"out of ten", 7, "10", 14},
		{"out of forty", 30, "40", 15},
		{"decimal comma", 4, "5,0", 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Normalize(rawGrade("Maths", tt.points, tt.outOf))
			assert.Equal(t, tt.want, g.Student.NormalizedValue)
			assert.Equal(t, tt.points, g.Student.Value)
			assert.False(t, g.OutOf.Disabled)
		})
	}
}

func TestNormalizeInvalidDenominator(t *testing.T) {
	for _, outOf := range []string{"0", "-4", "abc", "NaN", "Inf"} {
		t.Run(outOf, func(t *testing.T) {
			g := Normalize(rawGrade("Maths", 12, outOf))
			assert.Equal(t, model.NotGraded, g.Student.Information)
			assert.Zero(t, g.Student.NormalizedValue)
			assert.True(t, g.OutOf.Disabled)
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	raw := model.RawGrade{
		Subject:            model.RawSubject{Name: "Histoire"},
		Date:               testDate,
		SubjectFilePath:    "https://files.example/sujet.pdf",
		CorrectionFilePath: "https://files.example/corrige.pdf",
		IsOptional:         true,
	}

	g := Normalize(raw)

	assert.Equal(t, 1.0, g.Coefficient)
	assert.Zero(t, g.Student.Value)
	assert.True(t, g.Student.Disabled)
	assert.Equal(t, model.NotGraded, g.Student.Information)
	assert.Equal(t, "Histoire:1728288000000/none", g.ID)
	assert.Equal(t, model.Attachment{Type: model.AttachmentLink, Name: "Sujet", URL: raw.SubjectFilePath}, g.SubjectFile)
	assert.Equal(t, "Corrigé", g.CorrectionFile.Name)
	assert.True(t, g.IsOptional)
	assert.False(t, g.IsBonus)
	assert.True(t, g.Average.Disabled)
	assert.True(t, g.Max.Disabled)
	assert.True(t, g.Min.Disabled)
}

func TestNormalizeCoefficient(t *testing.T) {
	g := rawGrade("Maths", 10, "20")

	g.Coefficient = coef(0)
	assert.Equal(t, 1.0, Normalize(g).Coefficient)

	g.Coefficient = coef(2.5)
	assert.Equal(t, 2.5, Normalize(g).Coefficient)
}

func TestGradeID(t *testing.T) {
	g := rawGrade("Maths", 10, "20")
	g.Comment = "Contrôle"
	assert.Equal(t, "Maths:1728288000000/Contrôle", GradeID(g))

	g.ID = "upstream-42"
	assert.Equal(t, "upstream-42", GradeID(g))
}

func TestFilterPeriod(t *testing.T) {
	other := rawGrade("Maths", 10, "20")
	other.Period.ID = "T2"
	raw := []model.RawGrade{rawGrade("Maths", 10, "20"), other, rawGrade("SVT", 8, "20")}

	kept := FilterPeriod(model.Period{ID: "T1"}, raw)
	require.Len(t, kept, 2)
	assert.Equal(t, "SVT", kept[1].Subject.Name)

	assert.Empty(t, FilterPeriod(model.Period{ID: "T1", Yearly: true}, raw))
	assert.Empty(t, NormalizePeriod(model.Period{ID: "T1", Yearly: true}, raw))
}
