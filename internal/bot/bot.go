// Package bot wires the Telegram transport to the search orchestration.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/waterboxdeveloper/miprimerachamba-bot/internal/jobspy"
	"github.com/waterboxdeveloper/miprimerachamba-bot/internal/llm"
	"github.com/waterboxdeveloper/miprimerachamba-bot/internal/store"
	"github.com/waterboxdeveloper/miprimerachamba-bot/pkg/types"
)

// callbackVacantes is the data payload of the "search now" inline button.
const callbackVacantes = "/vacantes"

// userStore is the slice of the store the profile conversation needs.
type userStore interface {
	UserExists(ctx context.Context, telegramID string) bool
	CreateUser(ctx context.Context, user *types.User) error
	UpdateUser(ctx context.Context, telegramID string, keywords []string, country, jobType string) error
}

type Bot struct {
	api      *tgbotapi.BotAPI
	reply    replier
	users    userStore
	vacantes *VacantesHandler

	mu       sync.Mutex
	sessions map[int64]*profileSession
}

func New(token string, st *store.Store, limiter *store.Limiter, search *jobspy.Client, matcher *llm.Matcher) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating Telegram session: %w", err)
	}

	bot := &Bot{
		api:      api,
		users:    st,
		sessions: make(map[int64]*profileSession),
	}
	bot.reply = bot
	bot.vacantes = NewVacantesHandler(st, limiter, search, matcher, bot)

	return bot, nil
}

// Start consumes updates until the channel closes.
func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)
	slog.Info("Bot is running...", "username", b.api.Self.UserName)

	for update := range updates {
		b.handleUpdate(update)
	}
	return nil
}

func (b *Bot) Close() {
	b.api.StopReceivingUpdates()
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if cq := update.CallbackQuery; cq != nil {
		if cq.Data == callbackVacantes && cq.Message != nil {
			// Ack so Telegram shows the checkmark on the button.
			if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
				slog.Warn("no se pudo confirmar callback", "error", err)
			}
			go b.vacantes.Run(context.Background(), cq.Message.Chat.ID,
				strconv.FormatInt(cq.From.ID, 10), displayName(cq.From))
		}
		return
	}

	m := update.Message
	if m == nil || m.From == nil {
		return
	}

	chatID := m.Chat.ID
	telegramID := strconv.FormatInt(m.From.ID, 10)
	name := displayName(m.From)

	if m.IsCommand() {
		slog.Info("comando recibido", "command", m.Command(), "telegram_id", telegramID)
		switch m.Command() {
		case "start":
			b.sendOrLog(chatID, msgStart(name))
		case "help":
			b.sendOrLog(chatID, msgHelp)
		case "perfil":
			b.startProfile(chatID, name)
		case "vacantes":
			go b.vacantes.Run(context.Background(), chatID, telegramID, name)
		default:
			b.sendOrLog(chatID, msgUnknownCommand)
		}
		return
	}

	// Free text only matters inside a /perfil conversation.
	if b.hasSession(chatID) {
		b.handleProfileMessage(chatID, telegramID, name, m.Text)
	}
}

func (b *Bot) sendOrLog(chatID int64, text string) {
	if _, err := b.reply.SendMarkdown(chatID, text); err != nil {
		slog.Error("no se pudo enviar mensaje", "chat_id", chatID, "error", err)
	}
}

func displayName(u *tgbotapi.User) string {
	if u == nil || u.FirstName == "" {
		return "Usuario"
	}
	return u.FirstName
}
