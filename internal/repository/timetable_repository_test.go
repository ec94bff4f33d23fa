package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gradebook_backend/internal/config"
	"gradebook_backend/internal/model"
	"gradebook_backend/internal/timetable"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sampleTimetables() model.Timetables {
	return model.Timetables{
		12: {
			{ID: "a", Subject: "Maths", StartTimestamp: 1000, EndTimestamp: 2000, Source: "ecoledirecte"},
			{ID: "b", Subject: "SVT", Room: "B12", StartTimestamp: 3000, EndTimestamp: 4000, Source: "ical"},
		},
		13: {},
	}
}

// persisterContract 对所有持久化实现执行同样的检查
func persisterContract(t *testing.T, p timetable.Persister) {
	t.Helper()
	ctx := context.Background()

	missing, err := p.Load(ctx, "nobody-timetable-storage")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, p.Save(ctx, "u1-timetable-storage", sampleTimetables()))
	loaded, err := p.Load(ctx, "u1-timetable-storage")
	require.NoError(t, err)
	assert.Equal(t, sampleTimetables(), loaded)

	require.NoError(t, p.Save(ctx, "u1-timetable-storage", model.Timetables{1: {{ID: "c", StartTimestamp: 1, EndTimestamp: 2}}}))
	loaded, err = p.Load(ctx, "u1-timetable-storage")
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.Equal(t, "c", loaded[1][0].ID)
}

func TestMemoryTimetableRepository(t *testing.T) {
	persisterContract(t, NewMemoryTimetableRepository())
}

func TestTimetableFileRepository(t *testing.T) {
	persisterContract(t, NewTimetableFileRepository(&config.StorageConfig{LocalPath: t.TempDir()}))
}

func TestTimetableFileRepositoryRejectsEscapingKeys(t *testing.T) {
	dir := t.TempDir()
	repo := NewTimetableFileRepository(&config.StorageConfig{LocalPath: dir})
	ctx := context.Background()

	for _, key := range []string{"../outside", "a/b", `a\b`, "..", ""} {
		assert.Error(t, repo.Save(ctx, key, model.Timetables{1: nil}), key)
		_, err := repo.Load(ctx, key)
		assert.Error(t, err, key)
	}

	_, err := os.Stat(filepath.Join(dir, "..", "timetables"))
	assert.True(t, os.IsNotExist(err))
}

func TestTimetableRedisRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	repo := NewTimetableRedisRepository(rdb)
	persisterContract(t, repo)

	assert.True(t, mr.Exists("u1-timetable-storage"))
}

func TestTimetableRepository(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "gradebook.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.TimetableSnapshot{}))

	repo := NewTimetableRepository(db)
	persisterContract(t, repo)

	var snapshot model.TimetableSnapshot
	require.NoError(t, db.Where("storage_key = ?", "u1-timetable-storage").First(&snapshot).Error)
	assert.Equal(t, uint64(2), snapshot.Version)

	var count int64
	db.Model(&model.TimetableSnapshot{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStoreOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	repo := NewTimetableRedisRepository(rdb)

	store, err := timetable.Open(context.Background(), "u9-timetable-storage", repo)
	require.NoError(t, err)
	store.UpdateClasses(5, []model.Session{
		{ID: "a", StartTimestamp: 1, EndTimestamp: 2, Source: "X"},
		{ID: "a2", StartTimestamp: 1, EndTimestamp: 2, Source: "Y"},
	})

	reopened, err := timetable.Open(context.Background(), "u9-timetable-storage", repo)
	require.NoError(t, err)
	week, ok := reopened.Classes(5)
	require.True(t, ok)
	assert.Len(t, week, 1)
}
