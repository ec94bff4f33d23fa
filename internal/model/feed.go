package model

import "time"

// Account 用于向学校信息系统拉取成绩的账号会话
type Account struct {
	UserID    string `json:"userId"`
	AccountID string `json:"accountId"`
	Session   string `json:"-"`
}

// Period 成绩周期（学期/学年）
// swagger:model
type Period struct {
	Name           string `json:"name"`
	ID             string `json:"id"`
	StartTimestamp int64  `json:"startTimestamp"`
	EndTimestamp   int64  `json:"endTimestamp"`
	Yearly         bool   `json:"yearly"`
}

// 以下为成绩接口返回的原始结构

type GradeKind string

const (
	KindError     GradeKind = "error"
	KindGrade     GradeKind = "grade"
	KindAbsent    GradeKind = "absent"
	KindExempted  GradeKind = "exempted"
	KindNotGraded GradeKind = "not_graded"
)

type RawPeriod struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Yearly    bool      `json:"yearly"`
}

type RawGradeValue struct {
	Kind   GradeKind `json:"kind"`
	Points float64   `json:"points"`
}

type RawSubject struct {
	Name string `json:"name"`
}

type RawPeriodRef struct {
	ID string `json:"id"`
}

type RawGrade struct {
	ID                 string         `json:"id,omitempty"`
	Subject            RawSubject     `json:"subject"`
	Date               time.Time      `json:"date"`
	Comment            string         `json:"comment,omitempty"`
	Coefficient        *float64       `json:"coefficient,omitempty"`
	OutOf              string         `json:"outOf,omitempty"`
	IsOptional         bool           `json:"isOptional"`
	SubjectFilePath    string         `json:"subjectFilePath"`
	CorrectionFilePath string         `json:"correctionFilePath"`
	Value              *RawGradeValue `json:"value,omitempty"`
	Average            *RawGradeValue `json:"average,omitempty"`
	Max                *RawGradeValue `json:"max,omitempty"`
	Min                *RawGradeValue `json:"min,omitempty"`
	Period             RawPeriodRef   `json:"period"`
}

type GradesResponse struct {
	Periods []RawPeriod `json:"periods"`
	Grades  []RawGrade  `json:"grades"`
}
