// Package snapshot выгружает снапшоты каталога в S3-совместимое хранилище.
// Если S3 не сконфигурирован (пустой bucket), используется NoopUploader
// и снапшоты остаются только на локальном диске.
package snapshot

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/iudanet/marketsync/internal/config"
)

// объектный ключ свежего снапшота каталога
const objectKey = "catalog/current.db"

// Uploader загружает файл снапшота во внешнее хранилище
type Uploader interface {
	Upload(ctx context.Context, filePath string) error
}

// s3Client минимальный срез операций minio.Client, нужный загрузчику.
// Интерфейс позволяет тестировать без реального S3
type s3Client interface {
	FPutObject(ctx context.Context, bucket, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Uploader загружает снапшоты в S3-совместимое хранилище
type S3Uploader struct {
	client s3Client
	bucket string
}

// Upload загружает файл снапшота под фиксированным ключом,
// перезаписывая предыдущий снапшот
func (u *S3Uploader) Upload(ctx context.Context, filePath string) error {
	opts := minio.PutObjectOptions{ContentType: "application/octet-stream"}
	if _, err := u.client.FPutObject(ctx, u.bucket, objectKey, filePath, opts); err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return nil
}

// NoopUploader используется, когда S3 не сконфигурирован
type NoopUploader struct{}

// Upload ничего не делает в локальном режиме
func (u *NoopUploader) Upload(ctx context.Context, filePath string) error {
	return nil
}

// NewUploader выбирает загрузчик по конфигурации:
// NoopUploader при пустом bucket, иначе S3Uploader
func NewUploader(cfg config.SnapshotConfig) (Uploader, error) {
	if cfg.Bucket == "" {
		return &NoopUploader{}, nil
	}

	useSSL := true
	if cfg.UseSSL != nil {
		useSSL = *cfg.UseSSL
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &S3Uploader{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}
