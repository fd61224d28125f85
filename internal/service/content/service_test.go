package content_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/repository"
	"coleta-seletiva/internal/service/content"
)

const document = `
articles:
  - id: 1
    title: Por que separar o lixo?
    category: meio_ambiente
  - id: 2
    title: Coleta no condomínio
    category: dia_a_dia
tips:
  - id: 1
    title: Lave as embalagens
    category: dia_a_dia
materials:
  - material: Papel
    accepted: [jornal, papelão]
  - material: Vidro
    accepted: [garrafas]
`

func newService(files fstest.MapFS) content.Service {
	return content.NewService(repository.NewContentRepository(files, "content.yaml"))
}

func TestContentService_Filters(t *testing.T) {
	ctx := context.Background()
	svc := newService(fstest.MapFS{"content.yaml": {Data: []byte(document)}})

	articles, err := svc.Articles(ctx, "")
	require.NoError(t, err)
	assert.Len(t, articles, 2)

	articles, err = svc.Articles(ctx, "MEIO_AMBIENTE")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, int64(1), articles[0].ID)

	tips, err := svc.Tips(ctx, "inexistente")
	require.NoError(t, err)
	assert.NotNil(t, tips)
	assert.Empty(t, tips)

	materials, err := svc.Materials(ctx, "vidro")
	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.Equal(t, []string{"garrafas"}, materials[0].Accepted)
}

func TestContentService_StorageErrors(t *testing.T) {
	ctx := context.Background()

	_, err := newService(fstest.MapFS{}).Articles(ctx, "")
	assert.ErrorIs(t, err, domain.ErrStorageIO)

	_, err = newService(fstest.MapFS{"content.yaml": {Data: []byte("articles: [")}}).Tips(ctx, "")
	assert.ErrorIs(t, err, domain.ErrStorageFormat)
}
