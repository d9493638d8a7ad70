package comments

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Длина комментария в символах после обрезки пробелов.
const (
	MinLength = 3
	MaxLength = 500
)

// ErrInvalidContent - общий признак ошибок валидации текста.
var ErrInvalidContent = errors.New("invalid comment content")

// ValidationError несет сообщение для пользователя.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Is позволяет проверять любую ошибку валидации через errors.Is(err, ErrInvalidContent).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidContent }

var (
	ErrTooShort = &ValidationError{msg: fmt.Sprintf("O comentário deve ter pelo menos %d caracteres.", MinLength)}
	ErrTooLong  = &ValidationError{msg: fmt.Sprintf("O comentário não pode exceder %d caracteres.", MaxLength)}
)

// Validate обрезает пробелы и проверяет длину текста.
func Validate(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	n := utf8.RuneCountInString(trimmed)
	if n < MinLength {
		return "", ErrTooShort
	}
	if n > MaxLength {
		return "", ErrTooLong
	}
	return trimmed, nil
}
