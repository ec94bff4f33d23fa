package timetable

import (
	"context"
	"strings"
	"sync"

	"gradebook_backend/internal/model"
	"gradebook_backend/pkg/logger"
	"gradebook_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// DefaultKeyTemplate 未登录时使用的存储键，<default> 会被替换为用户ID
const DefaultKeyTemplate = "<default>-timetable-storage"

const placeholder = "<default>"

// StorageKey 将模板中的占位符替换为用户ID
func StorageKey(template, userID string) string {
	if template == "" {
		template = DefaultKeyTemplate
	}
	if userID == "" {
		return template
	}
	return strings.ReplaceAll(template, placeholder, userID)
}

// Persister 课表的持久化端口
type Persister interface {
	Load(ctx context.Context, key string) (model.Timetables, error)
	Save(ctx context.Context, key string, timetables model.Timetables) error
}

// Store 按周缓存的课表。三个写操作都是对整个映射的一次原子读改写，
// 提交后再把快照交给 Persister。
type Store struct {
	key       string
	persister Persister

	mu         sync.RWMutex
	timetables model.Timetables
	version    uint64

	saveMu   sync.Mutex
	savedVer uint64
}

// Open 创建课表并从持久化中恢复
func Open(ctx context.Context, key string, persister Persister) (*Store, error) {
	s := &Store{
		key:        key,
		persister:  persister,
		timetables: model.Timetables{},
	}
	if persister == nil {
		return s, nil
	}

	loaded, err := persister.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if loaded != nil {
		s.timetables = loaded
	}
	return s, nil
}

func (s *Store) Key() string {
	return s.key
}

// UpdateClasses 用去重后的课程替换某一周的内容
func (s *Store) UpdateClasses(week int, sessions []model.Session) {
	logger.Log.Debug("updating classes", zap.Int("week", week), zap.String("op", "timetable:updateClasses"))

	deduped := dedupe(sessions)
	s.commit(func(t model.Timetables) {
		t[week] = deduped
	})
	monitoring.TimetableOperations.WithLabelValues("update").Inc()

	logger.Log.Debug("updated classes", zap.Int("week", week), zap.Int("count", len(deduped)), zap.String("op", "timetable:updateClasses"))
}

// RemoveClasses 删除某一周，不存在时不做任何事
func (s *Store) RemoveClasses(week int) {
	logger.Log.Debug("removing classes", zap.Int("week", week), zap.String("op", "timetable:removeClasses"))

	s.commit(func(t model.Timetables) {
		delete(t, week)
	})
	monitoring.TimetableOperations.WithLabelValues("remove").Inc()

	logger.Log.Debug("removed classes", zap.Int("week", week), zap.String("op", "timetable:removeClasses"))
}

// RemoveClassesFromSource 从每一周中移除指定来源的课程，周次本身保留
func (s *Store) RemoveClassesFromSource(source string) {
	logger.Log.Debug("removing classes from source", zap.String("source", source), zap.String("op", "timetable:removeClassesFromSource"))

	s.commit(func(t model.Timetables) {
		for week, sessions := range t {
			kept := make([]model.Session, 0, len(sessions))
			for _, c := range sessions {
				if c.Source != source {
					kept = append(kept, c)
				}
			}
			t[week] = kept
		}
	})
	monitoring.TimetableOperations.WithLabelValues("remove_source").Inc()

	logger.Log.Debug("removed classes from source", zap.String("source", source), zap.String("op", "timetable:removeClassesFromSource"))
}

// Timetables 返回当前已提交状态的副本
func (s *Store) Timetables() model.Timetables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(model.Timetables, len(s.timetables))
	for week, sessions := range s.timetables {
		out[week] = append([]model.Session{}, sessions...)
	}
	return out
}

// Classes 返回某一周的课程，第二个返回值表示该周是否存在
func (s *Store) Classes(week int) ([]model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions, ok := s.timetables[week]
	if !ok {
		return nil, false
	}
	return append([]model.Session{}, sessions...), true
}

// commit 在副本上执行修改后整体替换，读者只会看到完整的状态
func (s *Store) commit(mutate func(model.Timetables)) {
	s.mu.Lock()
	next := clone(s.timetables)
	mutate(next)
	s.timetables = next
	s.version++
	version := s.version
	s.mu.Unlock()

	s.persist(version, next)
}

func (s *Store) persist(version uint64, snapshot model.Timetables) {
	if s.persister == nil {
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	// 已经写入了更新的版本
	if version <= s.savedVer {
		return
	}

	if err := s.persister.Save(context.Background(), s.key, snapshot); err != nil {
		monitoring.TimetablePersistFailures.Inc()
		logger.Log.Error("failed to persist timetable", zap.String("key", s.key), zap.Error(err))
		return
	}
	s.savedVer = version
}

func dedupe(sessions []model.Session) []model.Session {
	type span struct{ start, end int64 }

	seen := make(map[span]struct{}, len(sessions))
	out := make([]model.Session, 0, len(sessions))
	for _, c := range sessions {
		k := span{c.StartTimestamp, c.EndTimestamp}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

// clone 复制外层映射，课程切片在提交后不会被原地修改，可以共享
func clone(t model.Timetables) model.Timetables {
	out := make(model.Timetables, len(t))
	for week, sessions := range t {
		out[week] = sessions
	}
	return out
}
