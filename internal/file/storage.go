package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// blockedExtensions are rejected on every upload regardless of destination.
var blockedExtensions = map[string]struct{}{
	".exe":    {},
	".dll":    {},
	".so":     {},
	".dylib":  {},
	".msi":    {},
	".bat":    {},
	".cmd":    {},
	".sh":     {},
	".ps1":    {},
	".vbs":    {},
	".ps1xml": {},
}

// contentTypes maps known extensions for downloads. Anything else is served
// as application/octet-stream.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument" +
		".wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument" +
		".spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument" +
		".presentationml.presentation",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".txt":  "text/plain; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
	".csv":  "text/csv; charset=utf-8",
	".json": "application/json",
	".zip":  "application/zip",
	".rar":  "application/vnd.rar",
	".7z":   "application/x-7z-compressed",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
}

// ExtensionAllowed checks the upload denylist. TypeScript sources are also
// rejected when ignoreUploads is set, so a deployment can share its upload
// directory with a frontend build tree.
func ExtensionAllowed(name string, ignoreUploads bool) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if _, blocked := blockedExtensions[ext]; blocked {
		return false
	}
	if ignoreUploads && ext == ".ts" {
		return false
	}
	return true
}

func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// StoredName prefixes the original name with a UUID so uploads with the same
// name never collide on disk.
func StoredName(original string) string {
	return uuid.New().String() + "-" + filepath.Base(original)
}

// Storage persists file contents under a root directory, addressed by
// slash-separated relative paths.
type Storage interface {
	Save(relPath string, content io.Reader) (int64, error)
	Remove(relPath string) error
	Abs(relPath string) (string, error)
}

type diskStorage struct {
	root string
}

func NewDiskStorage(root string) (Storage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &diskStorage{root: abs}, nil
}

func (s *diskStorage) Save(relPath string, content io.Reader) (int64, error) {
	abs, err := s.Abs(relPath)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	dst, err := os.Create(abs)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(dst, content)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(abs) //nolint:errcheck // cleanup of partial write
		return 0, fmt.Errorf("write file: %w", err)
	}

	return written, nil
}

func (s *diskStorage) Remove(relPath string) error {
	abs, err := s.Abs(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}

	return nil
}

// Abs resolves a relative path inside the root, rejecting traversal out of
// the upload directory.
func (s *diskStorage) Abs(relPath string) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(relPath))
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid path %q", relPath)
	}
	return abs, nil
}
