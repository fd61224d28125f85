package photo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coleta-seletiva/internal/domain"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "me.jpg", want: ".jpg"},
		{name: "ME.JPEG", want: ".jpeg"},
		{name: "avatar.Png", want: ".png"},
		{name: "anim.gif", want: ".gif"},
		{name: "doc.pdf", wantErr: true},
		{name: "noextension", wantErr: true},
		{name: "photo.jpg.exe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extension(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidImageType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectPath(t *testing.T) {
	assert.Equal(t, "uploads/fotos_perfil/user_12_foto_perfil.png", ObjectPath(12, ".png"))
}

func TestLocalStorage_SaveReplacesPreviousPhoto(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	storage := NewLocalStorage(root)

	first, err := storage.Save(ctx, 3, "old.png", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	assert.Equal(t, "uploads/fotos_perfil/user_3_foto_perfil.png", first)

	// Another account's photo is left alone.
	_, err = storage.Save(ctx, 4, "other.gif", strings.NewReader("gif"), 3)
	require.NoError(t, err)

	second, err := storage.Save(ctx, 3, "new.JPG", strings.NewReader("jpg-bytes"), 9)
	require.NoError(t, err)
	assert.Equal(t, "uploads/fotos_perfil/user_3_foto_perfil.jpg", second)

	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(first)))
	assert.True(t, os.IsNotExist(err), "previous photo should be removed")

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(second)))
	require.NoError(t, err)
	assert.Equal(t, "jpg-bytes", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "uploads", "fotos_perfil"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLocalStorage_SaveRejectsUnsupportedType(t *testing.T) {
	root := t.TempDir()
	storage := NewLocalStorage(root)

	_, err := storage.Save(context.Background(), 3, "resume.pdf", strings.NewReader("pdf"), 3)
	assert.ErrorIs(t, err, domain.ErrInvalidImageType)

	_, statErr := os.Stat(filepath.Join(root, "uploads"))
	assert.True(t, os.IsNotExist(statErr), "nothing should be written for a rejected upload")
}
