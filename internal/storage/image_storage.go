package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

var (
	// ErrUnsupportedImage возвращается, если содержимое файла не является допустимым изображением.
	ErrUnsupportedImage = errors.New("file must be a jpeg, png, gif or webp image")
	// ErrFileTooLarge возвращается при превышении лимита размера загрузки.
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")
	// ErrEmptyFile возвращается для пустой загрузки.
	ErrEmptyFile = errors.New("file is empty")
)

// Разрешённые типы изображений и расширения, под которыми они сохраняются.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// sniffLen — сколько байт читается для определения типа по сигнатуре.
const sniffLen = 512

// ImageStorage отвечает за файловое хранилище изображений.
type ImageStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewImageStorage создаёт файловое хранилище.
func NewImageStorage(rootPath string, maxUploadMB int64) (*ImageStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &ImageStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save проверяет сигнатуру изображения, сохраняет файл в каталог folder
// и возвращает ссылку вида "folder/<uuid>.<ext>" относительно корня хранилища.
func (s *ImageStorage) Save(ctx context.Context, folder string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("storage: ошибка чтения файла: %w", err)
	}
	if n == 0 {
		return "", ErrEmptyFile
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", ErrUnsupportedImage
	}
	ext, ok := allowedImageTypes[kind.MIME.Value]
	if !ok {
		return "", ErrUnsupportedImage
	}

	folder = sanitizeFolder(folder)
	dir := filepath.Join(s.rootPath, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: не удалось создать каталог %s: %w", folder, err)
	}

	fileName := uuid.NewString() + ext
	targetPath := filepath.Join(dir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", ErrFileTooLarge
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return path.Join(folder, fileName), nil
}

// Delete удаляет файл из хранилища. Отсутствующий файл не считается ошибкой.
func (s *ImageStorage) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean := path.Clean("/" + ref)
	target := filepath.Join(s.rootPath, filepath.FromSlash(clean))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// sanitizeFolder оставляет одно безопасное имя каталога.
func sanitizeFolder(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." || name == "/" {
		name = "misc"
	}
	return name
}
