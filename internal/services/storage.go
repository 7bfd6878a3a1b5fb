package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// StorageService manages the PDF files of the resume folder.
type StorageService interface {
	SaveFile(file *multipart.FileHeader) (string, error)
	GetFilePath(filename string) (string, error)
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveFile stores the upload under its own base name, which later becomes the
// resume id. An existing file with the same name is replaced.
func (s *storageService) SaveFile(file *multipart.FileHeader) (string, error) {
	filename := filepath.Base(strings.ReplaceAll(file.Filename, `\`, "/"))
	if filename == "." || filename == "/" || filename == "" {
		return "", fmt.Errorf("invalid file name: %q", file.Filename)
	}

	if !isPDF(filename) {
		return "", fmt.Errorf("invalid file extension: %s", filepath.Ext(filename))
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.uploadPath, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filename, nil
}

// GetFilePath resolves filename inside the resume folder and rejects names
// that would escape it.
func (s *storageService) GetFilePath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == ".." {
		return "", fmt.Errorf("invalid file name: %q", filename)
	}
	return filepath.Join(s.uploadPath, filename), nil
}

func (s *storageService) DeleteFile(filename string) error {
	filePath, err := s.GetFilePath(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
