package domain

import "time"

// Author - снимок автора комментария на момент создания.
// Повторно не разрешается, даже если профиль пользователя изменился.
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	AvatarURL   string `json:"imageUrl"`
}

// Comment представляет комментарий к видео.
// Формат JSON совместим с записями, которые оставил веб-клиент.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    Author    `json:"user"`
	LikeCount int       `json:"likes"`
	LikedBy   []string  `json:"likedBy"`
}

// LikedByUser сообщает, лайкнул ли пользователь комментарий.
func (c *Comment) LikedByUser(userID string) bool {
	for _, id := range c.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone возвращает независимую копию комментария.
func (c *Comment) Clone() *Comment {
	cp := *c
	cp.LikedBy = append([]string{}, c.LikedBy...)
	return &cp
}

// SortOrder - порядок вывода комментариев.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// Toggle возвращает противоположный порядок.
func (o SortOrder) Toggle() SortOrder {
	if o == SortOldest {
		return SortNewest
	}
	return SortOldest
}

// FlagKind - вид пользовательской отметки на видео.
type FlagKind string

const (
	FlagLiked     FlagKind = "liked"
	FlagFavorited FlagKind = "favorited"
	FlagSaved     FlagKind = "saved"
)

// Valid проверяет, что вид отметки известен.
func (k FlagKind) Valid() bool {
	switch k {
	case FlagLiked, FlagFavorited, FlagSaved:
		return true
	}
	return false
}

// VideoStats - агрегированные счетчики видео.
type VideoStats struct {
	Views int64 `json:"views"`
	Likes int64 `json:"likes"`
}

// Video - запись из удаленного каталога видео.
type Video struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	ThumbnailURL  string    `json:"thumbnailUrl,omitempty"`
	Duration      int       `json:"duration,omitempty"` // секунды
	CreatedAt     time.Time `json:"createdAt"`
	MuxPlaybackID string    `json:"muxPlaybackId"`
}

// FeedItem - карточка видео в карусели главной страницы.
type FeedItem struct {
	ID            string
	Title         string
	Thumbnail     string
	Duration      string
	Date          time.Time
	MuxPlaybackID string
	CommentCount  int
	Views         int64
}
