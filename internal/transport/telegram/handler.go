package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	chat "github.com/reshetovitsme/tgfeed/internal/modules/chat/repository"
	operatorRepository "github.com/reshetovitsme/tgfeed/internal/modules/operator/repository"
	operatorService "github.com/reshetovitsme/tgfeed/internal/modules/operator/service"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
	"github.com/reshetovitsme/tgfeed/internal/shared/config"
	sharedErrors "github.com/reshetovitsme/tgfeed/internal/shared/errors"
)

const helpText = `👋 Welcome to the Telegram feed gateway!

I turn Telegram channels and chats into RSS feeds.

Available commands:
/help - Show this help message
/rsslink <channel_username> - Get the RSS feed link of a channel
/status - Show gateway status

Example:
/rsslink @example_channel`

// IdentityCache reports how many peers have known display names
type IdentityCache interface {
	Len() int
}

// PeerStore lists the peers persisted across restarts
type PeerStore interface {
	GetAllPeers() ([]peer.Peer, error)
}

// Handler handles control bot commands
type Handler struct {
	cfg        *config.Config
	chat       chat.Repository
	session    chat.Session
	identities IdentityCache
	peers      PeerStore
	operators  *operatorService.Service
	links      peer.Links
	logger     *slog.Logger
}

// New creates a new Telegram handler
func New(
	cfg *config.Config,
	chat chat.Repository,
	session chat.Session,
	identities IdentityCache,
	peers PeerStore,
	operators *operatorService.Service,
	links peer.Links,
) *Handler {
	return &Handler{
		cfg:        cfg,
		chat:       chat,
		session:    session,
		identities: identities,
		peers:      peers,
		operators:  operators,
		links:      links,
		logger:     slog.Default().With("component", "bot"),
	}
}

// RegisterCommands registers bot commands
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.handleHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/rsslink", bot.MatchTypePrefix, h.handleRSSLink)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact, h.handleStatus)
}

// HandleUpdate receives everything no command matched
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	h.logger.DebugContext(ctx, "Ignoring message", "user_id", update.Message.From.ID, "chat_id", update.Message.Chat.ID)
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	}); err != nil {
		h.logger.ErrorContext(ctx, "Failed to send reply", "chat_id", update.Message.Chat.ID, "error", err)
	}
}

// authorize rejects operators outside the allowed list
func (h *Handler) authorize(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	if update.Message == nil || update.Message.From == nil {
		return false
	}
	if !h.operators.IsAuthorized(update.Message.From.ID) {
		h.logger.WarnContext(ctx, "Unauthorized bot command", "user_id", update.Message.From.ID, "text", update.Message.Text)
		h.reply(ctx, b, update, "❌ Unauthorized")
		return false
	}
	return true
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update) {
		return
	}

	from := update.Message.From
	if _, err := h.operators.Touch(from.ID, from.Username); err != nil {
		h.logger.ErrorContext(ctx, "Failed to save operator", "user_id", from.ID, "error", err)
	}

	h.reply(ctx, b, update, helpText)
}

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update) {
		return
	}
	h.reply(ctx, b, update, helpText)
}

func (h *Handler) handleRSSLink(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update) {
		return
	}
	h.reply(ctx, b, update, h.rssLink(ctx, update.Message.Text))
}

func (h *Handler) handleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update) {
		return
	}
	h.reply(ctx, b, update, h.status())
}

// rssLink answers "/rsslink <handle>"
func (h *Handler) rssLink(ctx context.Context, text string) string {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return "Usage: /rsslink <channel_username>\nExample: /rsslink @example_channel"
	}
	handle := parts[1]

	if err := h.session.EnsureConnected(ctx); err != nil {
		h.logger.ErrorContext(ctx, "Telegram client unavailable", "error", err)
		return "❌ Telegram client is not connected, try again later"
	}

	p, err := h.chat.ResolveHandle(ctx, handle)
	switch {
	case errors.Is(err, sharedErrors.ErrPeerNotFound):
		return fmt.Sprintf("❌ Channel not found: %s", handle)
	case errors.Is(err, sharedErrors.ErrPrivateChannel):
		return fmt.Sprintf("❌ Channel %s is private", handle)
	case err != nil:
		h.logger.ErrorContext(ctx, "Failed to resolve handle", "handle", handle, "error", err)
		return fmt.Sprintf("❌ Failed to resolve %s: %v", handle, err)
	}

	return fmt.Sprintf("🔗 RSS Feed for %s:\n%s", p.DisplayName(), h.links.Feed(p))
}

func (h *Handler) status() string {
	connection := "connected"
	if !h.session.IsConnected() {
		connection = "disconnected"
	}

	operators, err := h.operators.Count()
	if err != nil {
		h.logger.Error("Failed to count operators", "error", err)
	}

	admin := "none"
	switch op, err := h.operators.Admin(); {
	case err == nil && op.Username != "":
		admin = "@" + op.Username
	case err == nil:
		admin = fmt.Sprintf("%d", op.ID)
	case !errors.Is(err, operatorRepository.ErrNotFound):
		h.logger.Error("Failed to find admin operator", "error", err)
	}

	stored, err := h.peers.GetAllPeers()
	if err != nil {
		h.logger.Error("Failed to list stored peers", "error", err)
	}

	return fmt.Sprintf(`📊 Gateway Status:

Telegram: %s
Known authors: %d
Stored peers: %d
Bot operators: %d
Admin: %s
Public URL: %s
Storage: %s`,
		connection, h.identities.Len(), len(stored), operators, admin, h.cfg.PublicURL, h.cfg.StoragePath)
}
