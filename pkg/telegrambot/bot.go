package telegrambot

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"xui-vpn-bot/internal/config"
	"xui-vpn-bot/internal/handlers"
	"xui-vpn-bot/internal/permissions"
	"xui-vpn-bot/internal/services"
)

// Bot represents the Telegram bot
type Bot struct {
	bot          *telebot.Bot
	config       *config.Config
	adminHandler handlers.MessageHandler
	permCtrl     *permissions.Controller
	logger       *logrus.Logger
}

// NewBot creates a new Telegram bot
func NewBot(
	cfg *config.Config,
	panelService *services.PanelService,
	stateService *services.UserStateService,
	qrService *services.QRService,
	permCtrl *permissions.Controller,
	logger *logrus.Logger,
) (*Bot, error) {
	settings := telebot.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			logger.Errorf("Telegram bot error: %v", err)
			if c != nil {
				c.Send("An error occurred. Please try again later.")
			}
		},
	}

	b, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	bot := &Bot{
		bot:          b,
		config:       cfg,
		adminHandler: handlers.NewAdminHandler(panelService, stateService, qrService, cfg, logger),
		permCtrl:     permCtrl,
		logger:       logger,
	}

	bot.setupMiddleware()

	return bot, nil
}

// Start starts the bot and stops it when the context is cancelled
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting Telegram bot")

	go func() {
		<-ctx.Done()
		b.logger.Info("Stopping Telegram bot")
		b.bot.Stop()
	}()

	b.bot.Start()
	return nil
}

// setupMiddleware sets up the bot middleware and routes
func (b *Bot) setupMiddleware() {
	b.bot.Use(func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			b.logger.Infof("Received message from %d: %s", c.Sender().ID, c.Text())
			return next(c)
		}
	})

	b.bot.Handle(telebot.OnText, b.handleUpdate)
	b.bot.Handle("/start", b.handleUpdate)
}

// handleUpdate handles an update from Telegram
func (b *Bot) handleUpdate(c telebot.Context) error {
	userID := c.Sender().ID

	if b.permCtrl.GetAccessType(userID) != permissions.Admin {
		b.logger.Warnf("Rejected message from non-admin user %d", userID)
		return c.Send("You do not have access to this bot.")
	}

	return b.adminHandler.Handle(c)
}
