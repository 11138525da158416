package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/eustad-backend/internal/logger"
	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eustad-backend/internal/storage"
)

// Каталоги хранилища для разных видов загрузок.
const (
	FolderProfiles  = "profiles"
	FolderDocuments = "documents"
	FolderGigs      = "gigs"
	FolderBookings  = "bookings"
)

// ImageStore описывает файловое хранилище изображений.
type ImageStore interface {
	Save(ctx context.Context, folder string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// saveImage сохраняет загрузку поля field; ошибки содержимого файла становятся ошибками валидации.
func saveImage(ctx context.Context, images ImageStore, folder, field string, r io.Reader) (string, error) {
	ref, err := images.Save(ctx, folder, r)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) || errors.Is(err, storage.ErrFileTooLarge) || errors.Is(err, storage.ErrEmptyFile) {
			return "", apperror.Validation(fmt.Errorf("%s: %w", field, err))
		}
		return "", apperror.Internal(err)
	}
	return ref, nil
}

// discardFiles удаляет файлы без возврата ошибки: сбой только логируется.
func discardFiles(ctx context.Context, images ImageStore, refs ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := images.Delete(ctx, ref); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"file":  ref,
				"error": err.Error(),
			}).Warn("service: не удалось удалить файл")
		}
	}
}

func derefOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
