package grading

import (
	"testing"
	"time"

	"gradebook_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name string
		in   *model.RawGradeValue
		want model.GradeValue
	}{
		{"missing", nil, model.GradeValue{Disabled: true, Information: model.NotGraded}},
		{"error", &model.RawGradeValue{Kind: model.KindError, Points: 4}, model.GradeValue{Value: 4, Disabled: true}},
		{"grade", &model.RawGradeValue{Kind: model.KindGrade, Points: 12.5}, model.GradeValue{Value: 12.5}},
		{"absent", &model.RawGradeValue{Kind: model.KindAbsent, Points: 3}, model.GradeValue{Value: 3, Information: model.Absent}},
		{"exempted", &model.RawGradeValue{Kind: model.KindExempted}, model.GradeValue{Information: model.Exempted}},
		{"not graded", &model.RawGradeValue{Kind: model.KindNotGraded, Points: 1}, model.GradeValue{Value: 1, Information: model.NotGraded}},
		{"unknown kind is a plain number", &model.RawGradeValue{Kind: "bonus", Points: 7}, model.GradeValue{Value: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeValue(tt.in))
		})
	}
}

func TestIsKnownKind(t *testing.T) {
	assert.True(t, IsKnownKind(model.KindGrade))
	assert.True(t, IsKnownKind(model.KindNotGraded))
	assert.False(t, IsKnownKind("bonus"))
}

func TestDecodePeriods(t *testing.T) {
	start := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)

	periods := DecodePeriods([]model.RawPeriod{
		{ID: "A001", Name: "Trimestre 1", StartDate: start, EndDate: end},
		{ID: "A000", Name: "Année", Yearly: true},
	})

	assert.Len(t, periods, 2)
	assert.Equal(t, model.Period{
		Name:           "Trimestre 1",
		ID:             "A001",
		StartTimestamp: start.UnixMilli(),
		EndTimestamp:   end.UnixMilli(),
	}, periods[0])
	assert.True(t, periods[1].Yearly)
	assert.Zero(t, periods[1].StartTimestamp)
}
