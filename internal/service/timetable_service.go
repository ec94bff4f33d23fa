package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gradebook_backend/internal/model"
	"gradebook_backend/internal/timetable"
	"gradebook_backend/internal/util"
	"gradebook_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TimetableService 为每个用户维护一个课表缓存
type TimetableService struct {
	persister   timetable.Persister
	keyTemplate string

	mu     sync.Mutex
	stores map[string]*timetable.Store
}

func NewTimetableService(persister timetable.Persister, keyTemplate string) *TimetableService {
	return &TimetableService{
		persister:   persister,
		keyTemplate: keyTemplate,
		stores:      make(map[string]*timetable.Store),
	}
}

// Store 返回用户的课表，首次访问时从持久化中加载。
// 加载在锁外进行，慢的存储后端不会阻塞其他用户。
func (s *TimetableService) Store(ctx context.Context, userID string) (*timetable.Store, error) {
	if err := validUserID(userID); err != nil {
		return nil, err
	}
	key := timetable.StorageKey(s.keyTemplate, userID)

	s.mu.Lock()
	store, ok := s.stores[key]
	s.mu.Unlock()
	if ok {
		return store, nil
	}

	opened, err := timetable.Open(ctx, key, s.persister)
	if err != nil {
		return nil, fmt.Errorf("open timetable %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// 并发首次访问时以先注册的为准
	if store, ok := s.stores[key]; ok {
		return store, nil
	}
	s.stores[key] = opened
	logger.Log.Info("timetable store opened", zap.String("key", key))
	return opened, nil
}

// validUserID 用户ID会成为存储键的一部分，也可能成为文件名
func validUserID(userID string) error {
	if strings.ContainsAny(userID, `/\`) || userID == "." || userID == ".." || strings.ContainsRune(userID, 0) {
		return fmt.Errorf("%w: %q", util.ErrInvalidUser, userID)
	}
	return nil
}

func validWeek(week int) error {
	if week < 0 {
		return fmt.Errorf("%w: %d", util.ErrInvalidWeek, week)
	}
	return nil
}

func (s *TimetableService) GetTimetables(ctx context.Context, userID string) (model.Timetables, error) {
	store, err := s.Store(ctx, userID)
	if err != nil {
		return nil, err
	}
	return store.Timetables(), nil
}

func (s *TimetableService) GetClasses(ctx context.Context, userID string, week int) ([]model.Session, error) {
	if err := validWeek(week); err != nil {
		return nil, err
	}
	store, err := s.Store(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, _ := store.Classes(week)
	if sessions == nil {
		sessions = []model.Session{}
	}
	return sessions, nil
}

// UpdateClasses 替换某一周的课程，缺少 ID 的课程会被分配一个
func (s *TimetableService) UpdateClasses(ctx context.Context, userID string, week int, sessions []model.Session) ([]model.Session, error) {
	if err := validWeek(week); err != nil {
		return nil, err
	}
	store, err := s.Store(ctx, userID)
	if err != nil {
		return nil, err
	}

	prepared := make([]model.Session, len(sessions))
	for i, c := range sessions {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		prepared[i] = c
	}

	store.UpdateClasses(week, prepared)
	updated, _ := store.Classes(week)
	if updated == nil {
		updated = []model.Session{}
	}
	return updated, nil
}

func (s *TimetableService) RemoveClasses(ctx context.Context, userID string, week int) error {
	if err := validWeek(week); err != nil {
		return err
	}
	store, err := s.Store(ctx, userID)
	if err != nil {
		return err
	}
	store.RemoveClasses(week)
	return nil
}

func (s *TimetableService) RemoveClassesFromSource(ctx context.Context, userID, source string) error {
	store, err := s.Store(ctx, userID)
	if err != nil {
		return err
	}
	store.RemoveClassesFromSource(source)
	return nil
}
