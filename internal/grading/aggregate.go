package grading

import (
	"math"

	"gradebook_backend/internal/model"
)

type weightedSum struct {
	score       float64
	coefficient float64
}

func (w *weightedSum) add(v, coefficient float64) {
	w.score += v * coefficient
	w.coefficient += coefficient
}

func (w weightedSum) mean() (float64, bool) {
	if w.coefficient <= 0 {
		return 0, false
	}
	return w.score / w.coefficient, true
}

type subjectAccumulator struct {
	name    string
	student weightedSum
	class   weightedSum
	grades  []model.Grade
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// studentEligible reports whether the student mark enters the weighted mean.
func studentEligible(g model.Grade) bool {
	return g.Student.Information == model.InformationNone &&
		!g.Student.Disabled &&
		finite(g.Student.NormalizedValue)
}

// classEligible is looser than studentEligible: only a disabled or
// non-numeric class average is skipped.
func classEligible(g model.Grade) bool {
	return !g.Average.Disabled && finite(g.Average.Value)
}

func unavailable() model.GradeValue {
	return model.GradeValue{Disabled: true, Information: model.NotGraded}
}

// AggregateSubjects groups grades by subject in first-seen order and computes
// the coefficient weighted mean for the student and for the class.
func AggregateSubjects(grades []model.Grade) []model.SubjectAverage {
	index := make(map[string]int)
	var accs []*subjectAccumulator

	for _, g := range grades {
		i, ok := index[g.SubjectName]
		if !ok {
			i = len(accs)
			index[g.SubjectName] = i
			accs = append(accs, &subjectAccumulator{name: g.SubjectName})
		}
		acc := accs[i]
		acc.grades = append(acc.grades, g)

		if studentEligible(g) {
			acc.student.add(g.Student.NormalizedValue, g.Coefficient)
		}
		if classEligible(g) {
			acc.class.add(g.Average.Value, g.Coefficient)
		}
	}

	subjects := make([]model.SubjectAverage, 0, len(accs))
	for _, acc := range accs {
		lo, hi := studentRange(acc.grades)

		average := unavailable()
		if v, ok := acc.student.mean(); ok {
			average = plainValue(v)
		}
		classAverage := unavailable()
		if v, ok := acc.class.mean(); ok {
			classAverage = plainValue(v)
		}

		subjects = append(subjects, model.SubjectAverage{
			SubjectName:  acc.name,
			Average:      average,
			ClassAverage: classAverage,
			Min:          plainValue(lo),
			Max:          plainValue(hi),
			Color:        "",
			OutOf:        plainValue(Scale),
			Coefficient:  1,
		})
	}
	return subjects
}

// studentRange covers every grade of the subject, eligible or not.
func studentRange(grades []model.Grade) (float64, float64) {
	if len(grades) == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, g := range grades {
		v := g.Student.Value
		if !finite(v) {
			v = 0
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// AggregateOverall rolls subject averages into the overall averages, each
// subject weighing the same. Every subject counts on the student side, a
// subject without student data contributing 0; the class side leaves out
// subjects that produced no class average.
func AggregateOverall(subjects []model.SubjectAverage) model.AverageOverview {
	var student, class weightedSum
	for _, s := range subjects {
		student.add(s.Average.Value, 1)
		if !s.ClassAverage.Disabled {
			class.add(s.ClassAverage.Value, 1)
		}
	}

	overall, _ := student.mean()
	classOverall, _ := class.mean()

	if subjects == nil {
		subjects = []model.SubjectAverage{}
	}
	return model.AverageOverview{
		Overall:      plainValue(overall),
		ClassOverall: plainValue(classOverall),
		Subjects:     subjects,
	}
}

// Compute runs the whole pipeline for one period.
func Compute(period model.Period, raw []model.RawGrade) ([]model.Grade, model.AverageOverview) {
	grades := NormalizePeriod(period, raw)
	return grades, AggregateOverall(AggregateSubjects(grades))
}
