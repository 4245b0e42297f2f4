package services

import (
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/PBA-Dev/allstars-minimal/models"
)

// allowedMediaTypes maps accepted MIME types to their coarse media class.
var allowedMediaTypes = map[string]string{
	"image/jpeg": "image",
	"image/png":  "image",
	"image/gif":  "image",
	"video/mp4":  "video",
	"video/webm": "video",
	"video/ogg":  "video",
}

// UploadService stores editor media uploads on disk and hands back a
// public URL. No transformation or scanning, just type and size checks.
type UploadService interface {
	StoreFile(fileHeader *multipart.FileHeader) (*models.UploadResult, error)
}

type uploadService struct {
	dir          string
	basePath     string
	maxImageSize int64
	maxVideoSize int64
}

// NewUploadService creates the upload directory if needed. Size limits
// are in bytes.
func NewUploadService(dir, basePath string, maxImageSize, maxVideoSize int64) (UploadService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &models.StorageError{Op: "create upload directory", Err: err}
	}
	log.Printf("INFO: [UploadService] Upload storage initialized at %s (served under %s).", dir, basePath)
	return &uploadService{
		dir:          dir,
		basePath:     basePath,
		maxImageSize: maxImageSize,
		maxVideoSize: maxVideoSize,
	}, nil
}

func (s *uploadService) StoreFile(fileHeader *multipart.FileHeader) (*models.UploadResult, error) {
	if fileHeader == nil {
		return nil, models.NewValidationError("no file provided")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	mediaType, allowed := allowedMediaTypes[strings.ToLower(contentType)]
	if !allowed {
		log.Printf("INFO: [UploadService] Rejected upload %q with disallowed type %q.", fileHeader.Filename, contentType)
		return nil, models.NewValidationError("file type %q is not allowed", contentType)
	}

	limit := s.maxImageSize
	if mediaType == "video" {
		limit = s.maxVideoSize
	}
	if fileHeader.Size > limit {
		log.Printf("INFO: [UploadService] Rejected oversize %s upload %q (%d bytes, limit %d).",
			mediaType, fileHeader.Filename, fileHeader.Size, limit)
		return nil, &models.PayloadTooLargeError{MediaType: mediaType, Limit: limit}
	}

	name := uuid.NewString() + sanitizeExtension(fileHeader.Filename)

	src, err := fileHeader.Open()
	if err != nil {
		return nil, &models.StorageError{Op: "open uploaded file", Err: err}
	}
	defer src.Close()

	destPath := filepath.Join(s.dir, name)
	dest, err := os.Create(destPath)
	if err != nil {
		return nil, &models.StorageError{Op: "create upload file", Err: err}
	}
	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		os.Remove(destPath)
		return nil, &models.StorageError{Op: "write upload file", Err: err}
	}
	if err := dest.Close(); err != nil {
		os.Remove(destPath)
		return nil, &models.StorageError{Op: "close upload file", Err: err}
	}

	log.Printf("INFO: [UploadService] Stored %s upload %q as %s (%d bytes).",
		mediaType, fileHeader.Filename, name, fileHeader.Size)
	return &models.UploadResult{
		URL:  path.Join(s.basePath, name),
		Type: mediaType,
	}, nil
}

// sanitizeExtension keeps a short alphanumeric extension from the client
// filename, or none at all. The stored name itself is always generated.
func sanitizeExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
