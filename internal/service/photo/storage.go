package photo

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"coleta-seletiva/internal/domain"
)

// Dir is the relative directory, or object prefix, that profile photos live under.
const Dir = "uploads/fotos_perfil"

var allowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// Storage keeps one profile photo per account. Save replaces whatever photo
// the account had before, whatever its extension, and returns the relative
// path that should be recorded on the account.
type Storage interface {
	Save(ctx context.Context, accountID int64, originalName string, r io.Reader, size int64) (string, error)
}

// Extension returns the lower-cased extension of name when it is an accepted
// image type.
func Extension(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidImageType, ext)
}

// ObjectPath is the relative path of an account's photo with the given extension.
func ObjectPath(accountID int64, ext string) string {
	return path.Join(Dir, fmt.Sprintf("user_%d_foto_perfil%s", accountID, ext))
}

func contentType(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
