package services

import (
	"errors"
	"io"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/infra/storage"

	"go.uber.org/zap"
)

// ImageStore persists uploaded images.
type ImageStore interface {
	Save(r io.Reader, originalName string, size int64) (string, error)
	Delete(name string) error
	MaxSize() int64
}

type UploadService struct {
	store ImageStore
	log   *zap.Logger
}

func NewUploadService(store ImageStore, log *zap.Logger) *UploadService {
	return &UploadService{store: store, log: log}
}

// UploadImage stores an image for a seller and returns its public path.
func (s *UploadService) UploadImage(actor *domain.Actor, r io.Reader, filename string, size int64) (string, error) {
	if !actor.IsSeller() {
		return "", domain.Forbidden("auth.role_required")
	}
	name, err := s.store.Save(r, filename, size)
	switch {
	case err == nil:
		return "/uploads/images/" + name, nil
	case errors.Is(err, storage.ErrTooLarge):
		e := domain.ValidationError("upload.too_large", domain.Violation{Field: "file", Rule: "max"})
		e.Args = []any{s.store.MaxSize()}
		return "", e
	case errors.Is(err, storage.ErrUnsupportedType):
		return "", domain.ValidationError("upload.bad_type", domain.Violation{Field: "file", Rule: "image"})
	default:
		s.log.Error("upload failed", zap.String("filename", filename), zap.Error(err))
		return "", domain.Persistence("upload.failed", err)
	}
}

func (s *UploadService) DeleteImage(actor *domain.Actor, name string) error {
	if !actor.IsSeller() {
		return domain.Forbidden("auth.role_required")
	}
	err := s.store.Delete(name)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return domain.NotFound("upload.not_found", name)
	default:
		s.log.Error("delete upload failed", zap.String("name", name), zap.Error(err))
		return domain.Persistence("upload.failed", err)
	}
}
