package model

import "gorm.io/datatypes"

// Session 课表中的一节课
// swagger:model
type Session struct {
	ID             string `json:"id"`
	Subject        string `json:"subject"`
	Room           string `json:"room,omitempty"`
	Teacher        string `json:"teacher,omitempty"`
	StartTimestamp int64  `json:"startTimestamp"`
	EndTimestamp   int64  `json:"endTimestamp"`
	Source         string `json:"source"`
	Status         string `json:"status,omitempty"`
}

// Timetables 周次 -> 课程列表
type Timetables map[int][]Session

// TimetableState 持久化时的序列化结构
type TimetableState struct {
	Timetables Timetables `json:"timetables"`
}

// TimetableSnapshot 数据库中保存的课表快照，每个存储键一行
type TimetableSnapshot struct {
	BaseModel
	StorageKey string         `gorm:"uniqueIndex;type:varchar(191);comment:存储键" json:"storageKey"`
	Version    uint64         `gorm:"comment:快照版本" json:"version"`
	Payload    datatypes.JSON `gorm:"comment:课表JSON" json:"payload"`
}

func (TimetableSnapshot) TableName() string {
	return "timetable_snapshots"
}
