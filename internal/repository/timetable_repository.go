package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"gradebook_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func encodeTimetables(t model.Timetables) ([]byte, error) {
	if t == nil {
		t = model.Timetables{}
	}
	return json.Marshal(model.TimetableState{Timetables: t})
}

func decodeTimetables(data []byte) (model.Timetables, error) {
	var state model.TimetableState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Timetables == nil {
		state.Timetables = model.Timetables{}
	}
	return state.Timetables, nil
}

// TimetableRepository 将课表快照保存在数据库中，每个存储键一行
type TimetableRepository struct {
	DB *gorm.DB
}

func NewTimetableRepository(db *gorm.DB) *TimetableRepository {
	return &TimetableRepository{DB: db}
}

func (r *TimetableRepository) Load(ctx context.Context, key string) (model.Timetables, error) {
	var snapshot model.TimetableSnapshot
	err := r.DB.WithContext(ctx).Where("storage_key = ?", key).First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeTimetables(snapshot.Payload)
}

func (r *TimetableRepository) Save(ctx context.Context, key string, t model.Timetables) error {
	payload, err := encodeTimetables(t)
	if err != nil {
		return err
	}

	snapshot := &model.TimetableSnapshot{
		StorageKey: key,
		Version:    1,
		Payload:    datatypes.JSON(payload),
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"payload":    snapshot.Payload,
			"version":    gorm.Expr("version + 1"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(snapshot).Error
}

// MemoryTimetableRepository 仅保存在进程内，用于 memory 存储类型和测试
type MemoryTimetableRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryTimetableRepository() *MemoryTimetableRepository {
	return &MemoryTimetableRepository{data: make(map[string][]byte)}
}

func (r *MemoryTimetableRepository) Load(ctx context.Context, key string) (model.Timetables, error) {
	r.mu.RLock()
	data, ok := r.data[key]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeTimetables(data)
}

func (r *MemoryTimetableRepository) Save(ctx context.Context, key string, t model.Timetables) error {
	payload, err := encodeTimetables(t)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data[key] = payload
	r.mu.Unlock()
	return nil
}
