package filestorage

import (
	"context"
	"fmt"
	"net/http"

	"github.com/saransh1220/panchakarma/internal/modules/filestorage/application"
	"github.com/saransh1220/panchakarma/internal/modules/filestorage/domain"
	"github.com/saransh1220/panchakarma/internal/modules/filestorage/infrastructure/local"
	"github.com/saransh1220/panchakarma/internal/modules/filestorage/infrastructure/s3"
	"github.com/saransh1220/panchakarma/internal/shared/infrastructure/config"
)

// UploadsPrefix is where local uploads are served.
const UploadsPrefix = "/uploads/"

type Module struct {
	service *application.FileService
	storage domain.FileStorage
	local   *local.LocalStorage
}

// NewModule picks S3 when cfg.UseS3 is set and the local filesystem
// otherwise.
func NewModule(ctx context.Context, cfg config.FileStorageConfig) (*Module, error) {
	m := &Module{}

	if cfg.UseS3 {
		storage, err := s3.NewS3Storage(ctx, s3.S3Config{
			BucketName:     cfg.S3BucketName,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			UseSSL:         cfg.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		m.storage = storage
	} else {
		storage, err := local.NewLocalStorage(cfg.LocalPath, cfg.PublicBaseURL+"/uploads")
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		m.storage = storage
		m.local = storage
	}

	m.service = application.NewFileService(m.storage)
	return m, nil
}

func (m *Module) Service() *application.FileService {
	return m.service
}

// StaticHandler serves local uploads. It is nil when objects live in S3.
func (m *Module) StaticHandler() http.Handler {
	if m.local == nil {
		return nil
	}
	return http.StripPrefix(UploadsPrefix, http.FileServer(http.Dir(m.local.BasePath())))
}
