package service

import (
	"context"
	"fmt"

	"gradebook_backend/internal/grading"
	"gradebook_backend/internal/model"
	"gradebook_backend/internal/util"
	"gradebook_backend/pkg/logger"
	"gradebook_backend/pkg/monitoring"
	"gradebook_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GradeFeed 成绩数据来源
type GradeFeed interface {
	FetchGrades(ctx context.Context, account model.Account) (*model.GradesResponse, error)
}

type feedInvalidator interface {
	Invalidate(ctx context.Context, account model.Account) error
}

type GradesAndAverages struct {
	Grades   []model.Grade         `json:"grades"`
	Averages model.AverageOverview `json:"averages"`
}

type GradeService struct {
	feed GradeFeed
}

func NewGradeService(feed GradeFeed) *GradeService {
	return &GradeService{feed: feed}
}

func (s *GradeService) fetch(ctx context.Context, account model.Account) (*model.GradesResponse, error) {
	resp, err := s.feed.FetchGrades(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("fetch grades for account %s: %w", account.AccountID, err)
	}
	return resp, nil
}

// GetGradesPeriods 获取账号的所有成绩周期
func (s *GradeService) GetGradesPeriods(ctx context.Context, account model.Account) ([]model.Period, error) {
	ctx, span := tracing.Tracer.Start(ctx, "GradeService.GetGradesPeriods")
	defer span.End()

	resp, err := s.fetch(ctx, account)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return grading.DecodePeriods(resp.Periods), nil
}

// GetGradesAndAverages 计算指定周期的成绩与平均分，周期不存在时返回 ErrPeriodNotFound
func (s *GradeService) GetGradesAndAverages(ctx context.Context, account model.Account, periodName string) (*GradesAndAverages, error) {
	ctx, span := tracing.Tracer.Start(ctx, "GradeService.GetGradesAndAverages")
	defer span.End()
	span.SetAttributes(attribute.String("period.name", periodName))

	resp, err := s.fetch(ctx, account)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	period, ok := findPeriod(grading.DecodePeriods(resp.Periods), periodName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", util.ErrPeriodNotFound, periodName)
	}

	warnUnknownKinds(resp.Grades)

	grades, averages := grading.Compute(period, resp.Grades)
	recordGrades(grades)
	span.SetAttributes(attribute.Int("grades.count", len(grades)))

	logger.Log.Debug("computed averages",
		zap.String("account", account.AccountID),
		zap.String("period", period.ID),
		zap.Int("grades", len(grades)),
		zap.Int("subjects", len(averages.Subjects)),
	)

	return &GradesAndAverages{Grades: grades, Averages: averages}, nil
}

// Refresh 丢弃缓存的成绩数据，下次请求会重新拉取
func (s *GradeService) Refresh(ctx context.Context, account model.Account) error {
	inv, ok := s.feed.(feedInvalidator)
	if !ok {
		return nil
	}
	return inv.Invalidate(ctx, account)
}

func findPeriod(periods []model.Period, name string) (model.Period, bool) {
	for _, p := range periods {
		if p.Name == name {
			return p, true
		}
	}
	return model.Period{}, false
}

func warnUnknownKinds(raw []model.RawGrade) {
	for _, g := range raw {
		for _, v := range []*model.RawGradeValue{g.Value, g.Average, g.Max, g.Min} {
			if v != nil && !grading.IsKnownKind(v.Kind) {
				logger.Log.Warn("unknown grade kind, treating as plain value",
					zap.String("kind", string(v.Kind)),
					zap.String("grade", grading.GradeID(g)),
				)
			}
		}
	}
}

func recordGrades(grades []model.Grade) {
	for _, g := range grades {
		eligible := "true"
		if g.Student.Information != model.InformationNone || g.Student.Disabled {
			eligible = "false"
		}
		monitoring.GradesComputed.WithLabelValues(eligible).Inc()
	}
}
