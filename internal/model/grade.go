package model

import (
	"encoding/json"
	"fmt"
)

// GradeInformation 成绩的特殊状态，零值表示普通分数
type GradeInformation int

const (
	InformationNone GradeInformation = iota
	Absent
	Exempted
	NotGraded
)

var informationNames = map[GradeInformation]string{
	Absent:    "absent",
	Exempted:  "exempted",
	NotGraded: "not_graded",
}

func (i GradeInformation) String() string {
	if name, ok := informationNames[i]; ok {
		return name
	}
	return "none"
}

func (i GradeInformation) MarshalJSON() ([]byte, error) {
	if i == InformationNone {
		return []byte("null"), nil
	}
	name, ok := informationNames[i]
	if !ok {
		return nil, fmt.Errorf("unknown grade information %d", int(i))
	}
	return json.Marshal(name)
}

func (i *GradeInformation) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = InformationNone
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for k, v := range informationNames {
		if v == name {
			*i = k
			return nil
		}
	}
	return fmt.Errorf("unknown grade information %q", name)
}

// GradeValue 解码后的分数及其状态
// swagger:model
type GradeValue struct {
	Value       float64          `json:"value"`
	Disabled    bool             `json:"disabled"`
	Information GradeInformation `json:"information" swaggertype:"string"`
}

// StudentValue 学生本人的分数，附带换算到 20 分制后的值
type StudentValue struct {
	GradeValue
	NormalizedValue float64 `json:"normalizedValue"`
}

type AttachmentType string

const AttachmentLink AttachmentType = "link"

type Attachment struct {
	Type AttachmentType `json:"type"`
	Name string         `json:"name"`
	URL  string         `json:"url"`
}

// Grade 规范化后的单条成绩
// swagger:model
type Grade struct {
	ID             string       `json:"id"`
	SubjectName    string       `json:"subjectName"`
	Description    string       `json:"description"`
	Timestamp      int64        `json:"timestamp"`
	SubjectFile    Attachment   `json:"subjectFile"`
	CorrectionFile Attachment   `json:"correctionFile"`
	IsBonus        bool         `json:"isBonus"`
	IsOptional     bool         `json:"isOptional"`
	OutOf          GradeValue   `json:"outOf"`
	Coefficient    float64      `json:"coefficient"`
	Student        StudentValue `json:"student"`
	Average        GradeValue   `json:"average"`
	Max            GradeValue   `json:"max"`
	Min            GradeValue   `json:"min"`
}

// SubjectAverage 单科平均分（学生与班级）
// swagger:model
type SubjectAverage struct {
	SubjectName  string     `json:"subjectName"`
	Average      GradeValue `json:"average"`
	ClassAverage GradeValue `json:"classAverage"`
	Min          GradeValue `json:"min"`
	Max          GradeValue `json:"max"`
	Color        string     `json:"color"`
	OutOf        GradeValue `json:"outOf"`
	Coefficient  float64    `json:"coefficient"`
}

// AverageOverview 某个学期的平均分汇总
// swagger:model
type AverageOverview struct {
	Overall      GradeValue       `json:"overall"`
	ClassOverall GradeValue       `json:"classOverall"`
	Subjects     []SubjectAverage `json:"subjects"`
}
