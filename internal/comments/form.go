package comments

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/UkralStul/apexmed-interactions/internal/auth"
	"github.com/UkralStul/apexmed-interactions/internal/domain"
)

// Подсказка об остатке символов появляется, когда до лимита осталось меньше этого числа.
const remainingHintThreshold = 100

var ErrSignInRequired = errors.New("Faça login para deixar um comentário")

// msgSaveFailed показывается, если комментарий не удалось сохранить.
const msgSaveFailed = "Não foi possível salvar seu comentário. Tente novamente."

// Form - форма нового комментария к видео.
type Form struct {
	videoID  string
	store    *Store
	identity auth.Identity
	onAdded  func(*domain.Comment)

	input      string
	errMsg     string
	submitting bool
}

// NewForm создает форму. onAdded вызывается после успешной отправки: через него
// обновляется список в этом же контексте, так как собственное уведомление сюда не приходит.
func NewForm(videoID string, store *Store, identity auth.Identity, onAdded func(*domain.Comment)) *Form {
	if identity == nil {
		identity = auth.Anonymous
	}
	return &Form{videoID: videoID, store: store, identity: identity, onAdded: onAdded}
}

func (f *Form) SetInput(text string) { f.input = text }

func (f *Form) Input() string { return f.input }

// Error возвращает последнее сообщение об ошибке для пользователя.
func (f *Form) Error() string { return f.errMsg }

// Remaining - сколько символов еще можно ввести; отрицательное значение означает превышение.
func (f *Form) Remaining() int {
	return MaxLength - utf8.RuneCountInString(f.input)
}

// RemainingHint возвращает счетчик символов, когда остаток меньше 100, иначе пустую строку.
func (f *Form) RemainingHint() string {
	left := f.Remaining()
	if left >= remainingHintThreshold {
		return ""
	}
	return fmt.Sprintf("%d caracteres restantes", left)
}

// CanSubmit - состояние кнопки отправки.
func (f *Form) CanSubmit() bool {
	return f.identity.IsSignedIn() &&
		!f.submitting &&
		f.Remaining() >= 0 &&
		utf8.RuneCountInString(strings.TrimSpace(f.input)) >= MinLength
}

// Submit проверяет текст, сохраняет комментарий, очищает поле и рассылает уведомление.
// При ошибке валидации хранилище не меняется.
func (f *Form) Submit(ctx context.Context) (*domain.Comment, error) {
	if !f.identity.IsSignedIn() {
		f.errMsg = ErrSignInRequired.Error()
		return nil, ErrSignInRequired
	}

	if _, err := Validate(f.input); err != nil {
		f.errMsg = err.Error()
		return nil, err
	}
	f.errMsg = ""

	f.submitting = true
	defer func() { f.submitting = false }()

	comment, err := f.store.Add(ctx, f.videoID, f.input, auth.Snapshot(f.identity))
	if err != nil {
		f.errMsg = msgSaveFailed
		return nil, errors.Wrap(err, "failed to save comment")
	}

	f.input = ""
	if err := f.store.NotifyChanged(ctx, f.videoID); err != nil {
		// Комментарий уже сохранен; другие контексты увидят его при следующем чтении
		f.store.log.WithError(err).WithField("video_id", f.videoID).Warn("failed to broadcast comment change")
	}
	if f.onAdded != nil {
		f.onAdded(comment)
	}
	return comment, nil
}
