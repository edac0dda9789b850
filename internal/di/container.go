package di

import (
	"context"
	"errors"
	"time"

	"github.com/go-telegram/bot"
	"github.com/samber/do/v2"
	"github.com/samber/oops"

	"github.com/reshetovitsme/tgfeed/internal/infrastructure/mtproto"
	chat "github.com/reshetovitsme/tgfeed/internal/modules/chat/repository"
	feedService "github.com/reshetovitsme/tgfeed/internal/modules/feed/service"
	identityService "github.com/reshetovitsme/tgfeed/internal/modules/identity/service"
	mediaService "github.com/reshetovitsme/tgfeed/internal/modules/media/service"
	operatorRepo "github.com/reshetovitsme/tgfeed/internal/modules/operator/repository"
	operatorService "github.com/reshetovitsme/tgfeed/internal/modules/operator/service"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
	peerRepo "github.com/reshetovitsme/tgfeed/internal/modules/peer/repository"
	"github.com/reshetovitsme/tgfeed/internal/shared/config"
	"github.com/reshetovitsme/tgfeed/internal/shared/metrics"
	httpServer "github.com/reshetovitsme/tgfeed/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/tgfeed/internal/transport/telegram"
)

const shutdownTimeout = 10 * time.Second

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	do.Provide(injector, func(i do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (peer.Links, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return peer.NewLinks(cfg.PublicURL), nil
	})

	// Register Peer Repository
	do.Provide(injector, func(i do.Injector) (peerRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := peerRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize peer repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Operator Repository
	do.Provide(injector, func(i do.Injector) (operatorRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := operatorRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize operator repository").Wrap(err)
		}
		return repo, nil
	})

	// Register MTProto Client, exposed as both chat interfaces
	do.Provide(injector, func(i do.Injector) (*mtproto.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		client, err := mtproto.New(mtproto.Config{
			APIID:       cfg.APIID,
			APIHash:     cfg.APIHash,
			Phone:       cfg.Phone,
			SessionPath: cfg.SessionPath,
			PartSize:    cfg.MediaChunkSize,
			RateLimit:   cfg.RateLimit,
			RateBurst:   cfg.RateBurst,
		}, do.MustInvoke[peerRepo.Repository](i), do.MustInvoke[*metrics.Metrics](i))
		if err != nil {
			return nil, oops.With("context", "failed to create telegram client").Wrap(err)
		}
		return client, nil
	})
	do.Provide(injector, func(i do.Injector) (chat.Repository, error) {
		return do.MustInvoke[*mtproto.Client](i), nil
	})
	do.Provide(injector, func(i do.Injector) (chat.Session, error) {
		return do.MustInvoke[*mtproto.Client](i), nil
	})

	// Register Identity Cache
	do.Provide(injector, func(i do.Injector) (*identityService.Service, error) {
		return identityService.New(do.MustInvoke[chat.Repository](i)), nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		links := do.MustInvoke[peer.Links](i)
		renderer := feedService.NewRenderer(do.MustInvoke[*identityService.Service](i), links)
		return feedService.New(do.MustInvoke[chat.Repository](i), renderer, links, feedService.Config{
			DefaultLimit:     cfg.FeedLimit,
			GroupExpandLimit: cfg.GroupExpandLimit,
		}), nil
	})

	// Register Media Service
	do.Provide(injector, func(i do.Injector) (*mediaService.Service, error) {
		return mediaService.New(do.MustInvoke[chat.Repository](i), do.MustInvoke[*metrics.Metrics](i)), nil
	})

	// Register Operator Service
	do.Provide(injector, func(i do.Injector) (*operatorService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return operatorService.New(do.MustInvoke[operatorRepo.Repository](i), cfg.AllowedUsers), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		return httpServer.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[chat.Repository](i),
			do.MustInvoke[chat.Session](i),
			do.MustInvoke[*feedService.Service](i),
			do.MustInvoke[*mediaService.Service](i),
			do.MustInvoke[*metrics.Metrics](i),
		), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		return telegramHandler.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[chat.Repository](i),
			do.MustInvoke[chat.Session](i),
			do.MustInvoke[*identityService.Service](i),
			do.MustInvoke[peerRepo.Repository](i),
			do.MustInvoke[*operatorService.Service](i),
			do.MustInvoke[peer.Links](i),
		), nil
	})

	// Register Bot, only usable when a token is configured
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.TelegramBotToken == "" {
			return nil, oops.Errorf("telegram_bot_token is not set")
		}

		handler := do.MustInvoke[*telegramHandler.Handler](i)
		b, err := bot.New(cfg.TelegramBotToken, bot.WithDefaultHandler(handler.HandleUpdate))
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		handler.RegisterCommands(b)
		return b, nil
	})

	return injector, nil
}

// Shutdown stops the HTTP server and disconnects the client. The bot
// stops with the context its Start was given.
func Shutdown(injector do.Injector) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error

	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, oops.With("context", "http server shutdown").Wrap(err))
		}
	}

	if client, err := do.Invoke[*mtproto.Client](injector); err == nil && client != nil {
		if err := client.Disconnect(ctx); err != nil {
			errs = append(errs, oops.With("context", "telegram client disconnect").Wrap(err))
		}
	}

	return errors.Join(errs...)
}
