package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gradebook_backend/internal/config"
	"gradebook_backend/internal/model"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func objectName(key string) string {
	return "timetables/" + key + ".json"
}

// TimetableObjectRepository 课表快照作为对象保存在 MinIO 中
type TimetableObjectRepository struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewTimetableObjectRepository(cfg *config.StorageConfig) (*TimetableObjectRepository, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &TimetableObjectRepository{Config: cfg, Client: client}, nil
}

// EnsureBucket 存储桶不存在时创建
func (r *TimetableObjectRepository) EnsureBucket(ctx context.Context) error {
	exists, err := r.Client.BucketExists(ctx, r.Config.MinioBucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.Client.MakeBucket(ctx, r.Config.MinioBucket, minio.MakeBucketOptions{})
}

func (r *TimetableObjectRepository) Load(ctx context.Context, key string) (model.Timetables, error) {
	obj, err := r.Client.GetObject(ctx, r.Config.MinioBucket, objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, err
	}
	return decodeTimetables(data)
}

func (r *TimetableObjectRepository) Save(ctx context.Context, key string, t model.Timetables) error {
	payload, err := encodeTimetables(t)
	if err != nil {
		return err
	}
	_, err = r.Client.PutObject(ctx, r.Config.MinioBucket, objectName(key), bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

// TimetableFileRepository 本地文件存储实现
type TimetableFileRepository struct {
	Config *config.StorageConfig
}

func NewTimetableFileRepository(cfg *config.StorageConfig) *TimetableFileRepository {
	return &TimetableFileRepository{Config: cfg}
}

// path 存储键必须是单个文件名，不能跳出存储目录
func (r *TimetableFileRepository) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(r.Config.LocalPath, objectName(key)), nil
}

func (r *TimetableFileRepository) Load(ctx context.Context, key string) (model.Timetables, error) {
	src, err := r.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return decodeTimetables(data)
}

func (r *TimetableFileRepository) Save(ctx context.Context, key string, t model.Timetables) error {
	payload, err := encodeTimetables(t)
	if err != nil {
		return err
	}

	dst, err := r.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	// 先写临时文件再重命名，避免读到写了一半的快照
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, payload, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
