package photo

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"coleta-seletiva/internal/domain"
)

// MinIOStorage keeps photos in an S3-compatible bucket, keyed by their relative path.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

func NewMinIOStorage(client *minio.Client, bucket string) *MinIOStorage {
	return &MinIOStorage{client: client, bucket: bucket}
}

func (s *MinIOStorage) Save(ctx context.Context, accountID int64, originalName string, r io.Reader, size int64) (string, error) {
	ext, err := Extension(originalName)
	if err != nil {
		return "", err
	}

	for _, other := range allowedExtensions {
		if other == ext {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, ObjectPath(accountID, other), minio.RemoveObjectOptions{}); err != nil {
			if minio.ToErrorResponse(err).Code != "NoSuchKey" {
				return "", fmt.Errorf("%w: remove previous photo: %v", domain.ErrStorageIO, err)
			}
		}
	}

	key := ObjectPath(accountID, ext)
	_, err = s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType(ext),
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload photo: %v", domain.ErrStorageIO, err)
	}

	return key, nil
}
