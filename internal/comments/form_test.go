package comments

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/apexmed-interactions/internal/auth"
	"github.com/UkralStul/apexmed-interactions/internal/domain"
)

func TestForm_SignInRequired(t *testing.T) {
	store, kv := newTestStore(t)
	form := NewForm("v1", store, auth.Anonymous, nil)
	form.SetInput("Ótimo vídeo")

	assert.False(t, form.CanSubmit())
	_, err := form.Submit(context.Background())
	assert.Equal(t, ErrSignInRequired, err)
	assert.Equal(t, "Faça login para deixar um comentário", form.Error())
	assert.Equal(t, "Ótimo vídeo", form.Input())
	assert.Equal(t, 0, kv.Len())
}

func TestForm_ValidationMessages(t *testing.T) {
	store, kv := newTestStore(t)
	form := NewForm("v1", store, auth.Static{User: &testAuthor}, nil)

	form.SetInput("  ab  ")
	assert.False(t, form.CanSubmit())
	_, err := form.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "O comentário deve ter pelo menos 3 caracteres.", form.Error())
	assert.Equal(t, "  ab  ", form.Input())

	form.SetInput(strings.Repeat("a", 501))
	assert.False(t, form.CanSubmit())
	_, err = form.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "O comentário não pode exceder 500 caracteres.", form.Error())
	assert.Equal(t, 0, kv.Len())
}

func TestForm_RemainingHint(t *testing.T) {
	store, _ := newTestStore(t)
	form := NewForm("v1", store, auth.Static{User: &testAuthor}, nil)

	form.SetInput(strings.Repeat("a", 400))
	assert.Equal(t, 100, form.Remaining())
	assert.Empty(t, form.RemainingHint())

	form.SetInput(strings.Repeat("a", 401))
	assert.Equal(t, "99 caracteres restantes", form.RemainingHint())

	form.SetInput(strings.Repeat("a", 505))
	assert.Equal(t, -5, form.Remaining())
	assert.Equal(t, "-5 caracteres restantes", form.RemainingHint())
}

func TestForm_Submit(t *testing.T) {
	store, _ := newTestStore(t)
	var added *domain.Comment
	form := NewForm("v1", store, auth.Static{User: &domain.Author{ID: "user-a", DisplayName: "Dr. Ana"}}, func(c *domain.Comment) {
		added = c
	})

	// Ошибка прошлой попытки сбрасывается успешной отправкой
	form.SetInput("ab")
	_, _ = form.Submit(context.Background())
	require.NotEmpty(t, form.Error())

	form.SetInput("Ótimo vídeo")
	assert.True(t, form.CanSubmit())
	comment, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, form.Error())
	assert.Empty(t, form.Input())
	require.NotNil(t, added)
	assert.Equal(t, comment.ID, added.ID)
	assert.Equal(t, auth.DefaultAvatarURL, comment.Author.AvatarURL)
	assert.Equal(t, "Dr. Ana", comment.Author.DisplayName)
}
