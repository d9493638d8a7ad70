package auth

import "github.com/UkralStul/apexmed-interactions/internal/domain"

const (
	AnonymousID      = "anonymous"
	DefaultName      = "Usuário"
	DefaultAvatarURL = "/placeholder-avatar.png"
)

// Identity - внешний провайдер аутентификации.
type Identity interface {
	CurrentUser() *domain.Author
	IsSignedIn() bool
}

// Static - фиксированный пользователь (из конфигурации или флагов CLI).
type Static struct {
	User *domain.Author
}

func (s Static) CurrentUser() *domain.Author { return s.User }

func (s Static) IsSignedIn() bool { return s.User != nil && s.User.ID != "" }

// Anonymous - никто не вошел.
var Anonymous Identity = Static{}

// Snapshot фиксирует автора для нового комментария, подставляя значения по умолчанию.
func Snapshot(identity Identity) domain.Author {
	author := domain.Author{ID: AnonymousID, DisplayName: DefaultName, AvatarURL: DefaultAvatarURL}
	if identity == nil {
		return author
	}
	user := identity.CurrentUser()
	if user == nil {
		return author
	}
	if user.ID != "" {
		author.ID = user.ID
	}
	if user.DisplayName != "" {
		author.DisplayName = user.DisplayName
	}
	if user.AvatarURL != "" {
		author.AvatarURL = user.AvatarURL
	}
	return author
}
