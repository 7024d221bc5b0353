package service

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"
	"trading_edu_backend/internal/config"
	"trading_edu_backend/internal/util"
	"trading_edu_backend/pkg/logger"
	"unicode"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	URL(ctx context.Context, key string) (string, error)
}

// LocalStorageProvider 本地存储实现，文件由 /uploads 静态路由提供
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) URL(_ context.Context, key string) (string, error) {
	return "/uploads/" + strings.TrimPrefix(key, "/"), nil
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

// URL returns a presigned GET link valid for the configured expiry.
func (p *MinioStorageProvider) URL(ctx context.Context, key string) (string, error) {
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, key, urlExpiry(p.Config), url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) URL(_ context.Context, key string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	return bucket.SignURL(key, oss.HTTPGet, int64(urlExpiry(p.Config).Seconds()))
}

func urlExpiry(cfg *config.StorageConfig) time.Duration {
	if cfg.URLExpiry <= 0 {
		return time.Hour
	}
	return cfg.URLExpiry
}

// StorageService 存储服务，负责把徽章图片的对象 key 转成可访问的 URL
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("MinIO unavailable, falling back to local storage", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("OSS unavailable, falling back to local storage", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

// IsObjectKey reports whether a badge image names a stored object rather
// than an emoji or a ready URL.
func IsObjectKey(image string) bool {
	if image == "" || strings.Contains(image, "://") || strings.HasPrefix(image, "/") {
		return false
	}
	for _, r := range image {
		if r > unicode.MaxASCII || unicode.IsSpace(r) {
			return false
		}
	}
	return path.Ext(image) != ""
}

// ResolveImage returns a displayable image. Failures keep the raw value.
func (s *StorageService) ResolveImage(ctx context.Context, image string) string {
	if s == nil || s.Provider == nil || !IsObjectKey(image) {
		return image
	}
	u, err := s.Provider.URL(ctx, image)
	if err != nil {
		logger.Log.Warn("解析徽章图片地址失败", zap.String("key", image), zap.Error(err))
		return image
	}
	return u
}
