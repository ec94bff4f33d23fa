package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gradebook_backend/internal/model"
	"gradebook_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeed struct {
	resp        *model.GradesResponse
	err         error
	calls       int
	invalidated int
}

func (f *stubFeed) FetchGrades(ctx context.Context, account model.Account) (*model.GradesResponse, error) {
	f.calls++
	return f.resp, f.err
}

func (f *stubFeed) Invalidate(ctx context.Context, account model.Account) error {
	f.invalidated++
	return nil
}

func points(kind model.GradeKind, p float64) *model.RawGradeValue {
	return &model.RawGradeValue{Kind: kind, Points: p}
}

func sampleFeed() *model.GradesResponse {
	three := 3.0
	return &model.GradesResponse{
		Periods: []model.RawPeriod{
			{ID: "A001", Name: "Trimestre 1", StartDate: time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)},
			{ID: "A002", Name: "Trimestre 2"},
			{ID: "A000", Name: "Année", Yearly: true},
		},
		Grades: []model.RawGrade{
			{Subject: model.RawSubject{Name: "Maths"}, OutOf: "20", Value: points(model.KindGrade, 10), Average: points(model.KindGrade, 12), Period: model.RawPeriodRef{ID: "A001"}},
			{Subject: model.RawSubject{Name: "Maths"}, OutOf: "20", Coefficient: &three, Value: points(model.KindGrade, 16), Period: model.RawPeriodRef{ID: "A001"}},
			{Subject: model.RawSubject{Name: "Anglais"}, OutOf: "10", Value: points(model.KindGrade, 6), Period: model.RawPeriodRef{ID: "A001"}},
			{Subject: model.RawSubject{Name: "Anglais"}, OutOf: "20", Value: points(model.KindAbsent, 0), Period: model.RawPeriodRef{ID: "A001"}},
			{Subject: model.RawSubject{Name: "SVT"}, OutOf: "20", Value: points("bonus", 18), Period: model.RawPeriodRef{ID: "A002"}},
			{Subject: model.RawSubject{Name: "SVT"}, OutOf: "20", Value: points(model.KindGrade, 9), Period: model.RawPeriodRef{ID: "A000"}},
		},
	}
}

func TestGetGradesPeriods(t *testing.T) {
	svc := NewGradeService(&stubFeed{resp: sampleFeed()})

	periods, err := svc.GetGradesPeriods(context.Background(), model.Account{AccountID: "1"})
	require.NoError(t, err)
	require.Len(t, periods, 3)
	assert.Equal(t, "Trimestre 1", periods[0].Name)
	assert.Equal(t, time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC).UnixMilli(), periods[0].StartTimestamp)
	assert.True(t, periods[2].Yearly)
}

func TestGetGradesAndAverages(t *testing.T) {
	feed := &stubFeed{resp: sampleFeed()}
	svc := NewGradeService(feed)

	result, err := svc.GetGradesAndAverages(context.Background(), model.Account{AccountID: "1"}, "Trimestre 1")
	require.NoError(t, err)

	assert.Equal(t, 1, feed.calls)
	require.Len(t, result.Grades, 4)
	require.Len(t, result.Averages.Subjects, 2)

	maths := result.Averages.Subjects[0]
	assert.Equal(t, "Maths", maths.SubjectName)
	assert.Equal(t, 14.5, maths.Average.Value)
	assert.Equal(t, 12.0, maths.ClassAverage.Value)

	anglais := result.Averages.Subjects[1]
	assert.Equal(t, 12.0, anglais.Average.Value)
	assert.True(t, anglais.ClassAverage.Disabled)

	assert.Equal(t, 13.25, result.Averages.Overall.Value)
	assert.Equal(t, 12.0, result.Averages.ClassOverall.Value)
}

func TestGetGradesAndAveragesUnknownKindIsPlainValue(t *testing.T) {
	svc := NewGradeService(&stubFeed{resp: sampleFeed()})

	result, err := svc.GetGradesAndAverages(context.Background(), model.Account{AccountID: "1"}, "Trimestre 2")
	require.NoError(t, err)
	require.Len(t, result.Averages.Subjects, 1)
	assert.Equal(t, 18.0, result.Averages.Overall.Value)
}

func TestGetGradesAndAveragesYearlyPeriodIsEmpty(t *testing.T) {
	svc := NewGradeService(&stubFeed{resp: sampleFeed()})

	result, err := svc.GetGradesAndAverages(context.Background(), model.Account{AccountID: "1"}, "Année")
	require.NoError(t, err)
	assert.Empty(t, result.Grades)
	assert.Empty(t, result.Averages.Subjects)
	assert.Zero(t, result.Averages.Overall.Value)
}

func TestGetGradesAndAveragesUnknownPeriod(t *testing.T) {
	svc := NewGradeService(&stubFeed{resp: sampleFeed()})

	result, err := svc.GetGradesAndAverages(context.Background(), model.Account{AccountID: "1"}, "Trimestre 9")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, util.ErrPeriodNotFound)
}

func TestGetGradesAndAveragesFeedError(t *testing.T) {
	svc := NewGradeService(&stubFeed{err: util.ErrFeedUnavailable})

	_, err := svc.GetGradesAndAverages(context.Background(), model.Account{AccountID: "1"}, "Trimestre 1")
	assert.ErrorIs(t, err, util.ErrFeedUnavailable)

	_, err = svc.GetGradesPeriods(context.Background(), model.Account{AccountID: "1"})
	assert.True(t, errors.Is(err, util.ErrFeedUnavailable))
}

func TestRefresh(t *testing.T) {
	feed := &stubFeed{resp: sampleFeed()}
	svc := NewGradeService(feed)

	require.NoError(t, svc.Refresh(context.Background(), model.Account{AccountID: "1"}))
	assert.Equal(t, 1, feed.invalidated)
}
