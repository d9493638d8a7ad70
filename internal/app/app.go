package app

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/UkralStul/apexmed-interactions/internal/auth"
	"github.com/UkralStul/apexmed-interactions/internal/catalog"
	"github.com/UkralStul/apexmed-interactions/internal/comments"
	"github.com/UkralStul/apexmed-interactions/internal/config"
	"github.com/UkralStul/apexmed-interactions/internal/dataloader"
	"github.com/UkralStul/apexmed-interactions/internal/domain"
	"github.com/UkralStul/apexmed-interactions/internal/interaction"
	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

// Окно склейки запросов счетчиков комментариев в одну пачку.
const loaderWait = 2 * time.Millisecond

// App - один контекст выполнения (аналог вкладки браузера): свой origin, общие хранилище и рассылка.
// Все зависимости собираются из конфигурации; Close освобождает подключения.
type App struct {
	Config *config.Config
	Log    *logrus.Logger
	Origin string

	Storage     storage.Storage
	Broadcaster storage.Broadcaster
	Locker      storage.Locker

	Comments     *comments.Store
	Interactions *interaction.Store
	Markers      interaction.Markers
	Catalog      catalog.Catalog
	Identity     auth.Identity

	closers []func() error
}

// New собирает приложение по конфигурации. При ошибке уже открытые подключения закрываются.
func New(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	log, err := NewLogger(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Log: log, Origin: storage.NewOrigin()}
	if err := a.build(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"storage": cfg.Storage.Type,
		"notify":  cfg.Notify.Type,
		"lock":    cfg.Lock.Type,
		"origin":  a.Origin,
	}).Debug("app initialized")
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	b := newBackends(a.Config, a.Log)
	a.closers = append(a.closers, b.close)

	var err error
	if a.Storage, err = b.storage(ctx); err != nil {
		return errors.Wrap(err, "creating storage")
	}
	if a.Broadcaster, err = b.broadcaster(ctx); err != nil {
		return errors.Wrap(err, "creating broadcaster")
	}
	if a.Locker, err = b.locker(ctx); err != nil {
		return errors.Wrap(err, "creating locker")
	}

	a.Comments = comments.New(a.Storage, a.Broadcaster, a.Origin,
		comments.WithLocker(a.Locker),
		comments.WithLogger(a.Log),
	)
	a.Interactions = interaction.New(a.Storage, a.Log, interaction.WithLocker(a.Locker))

	if a.Config.Session.PersistMarkers {
		a.Markers = interaction.NewStoredMarkers(a.Storage, a.Config.Session.MarkersKey, a.Log)
	} else {
		a.Markers = interaction.NewSessionMarkers()
	}

	a.Identity = identityFromConfig(a.Config.User)
	a.Catalog = newCatalog(a.Config.Catalog, a.Log)
	return nil
}

func identityFromConfig(u config.User) auth.Identity {
	if u.ID == "" {
		return auth.Anonymous
	}
	return auth.Static{User: &domain.Author{ID: u.ID, DisplayName: u.Name, AvatarURL: u.AvatarURL}}
}

func newCatalog(cfg config.Catalog, log logrus.FieldLogger) catalog.Catalog {
	var opts []catalog.ClientOption
	opts = append(opts, catalog.WithClientLogger(log), catalog.WithRateLimit(cfg.RateInterval, cfg.RateBurst))
	if cfg.Timeout > 0 {
		opts = append(opts, catalog.WithHTTPClient(newHTTPClient(cfg.Timeout)))
	}
	return catalog.NewCachingCatalog(catalog.NewHTTPClient(cfg.URL, opts...), cfg.CacheTTL)
}

// UserID возвращает id текущего пользователя или пустую строку.
func (a *App) UserID() string {
	if u := a.Identity.CurrentUser(); u != nil && a.Identity.IsSignedIn() {
		return u.ID
	}
	return ""
}

// Feed загружает каталог и собирает ленту со счетчиками комментариев и просмотров.
func (a *App) Feed(ctx context.Context) ([]domain.FeedItem, error) {
	videos, err := a.Catalog.Videos(ctx)
	if err != nil {
		return nil, err
	}
	loaders := dataloader.For(ctx)
	if loaders == nil {
		loaders = dataloader.New(a.Comments, loaderWait)
	}
	return catalog.BuildFeed(ctx, videos, loaders, a.Interactions)
}

// Close закрывает подключения в обратном порядке.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
