package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/saransh1220/panchakarma/internal/modules/filestorage/domain"
)

// FileService stores user uploads on the configured backend.
type FileService struct {
	storage domain.FileStorage
}

func NewFileService(storage domain.FileStorage) *FileService {
	return &FileService{storage: storage}
}

// UploadImage decodes an image, fits it inside width x height and stores it
// as JPEG under folder with a generated name.
func (s *FileService) UploadImage(ctx context.Context, folder string, src io.Reader, width, height int) (domain.File, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return domain.File{}, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}

	fitted := imaging.Fit(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return domain.File{}, fmt.Errorf("encode image: %w", err)
	}

	key := fmt.Sprintf("%s/%s.jpg", folder, uuid.NewString())
	size := int64(buf.Len())
	url, err := s.storage.UploadFile(ctx, key, &buf, "image/jpeg")
	if err != nil {
		return domain.File{}, err
	}
	return domain.File{Key: key, URL: url, ContentType: "image/jpeg", Size: size}, nil
}

// ViewURL turns a stored public URL into one the browser can load, presigning
// it when the backend requires that. URLs from other hosts pass through.
func (s *FileService) ViewURL(ctx context.Context, fileURL string, expiration time.Duration) string {
	if fileURL == "" {
		return ""
	}
	key, err := s.storage.GetKeyFromURL(fileURL)
	if err != nil {
		return fileURL
	}
	signed, err := s.storage.GetPresignedURL(ctx, key, expiration)
	if err != nil {
		return fileURL
	}
	return signed
}

// DeleteByURL removes the object behind a stored public URL. URLs the
// backend did not issue and objects that are already gone are ignored.
func (s *FileService) DeleteByURL(ctx context.Context, fileURL string) error {
	key, err := s.storage.GetKeyFromURL(fileURL)
	if err != nil {
		return nil
	}
	err = s.storage.DeleteFile(ctx, key)
	if errors.Is(err, domain.ErrNotExist) {
		return nil
	}
	return err
}
