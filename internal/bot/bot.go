// Package bot wires the Telegram front end: it creates the telebot instance,
// installs middleware and registers every command handler.
package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"kingdom-hub/internal/config"
	"kingdom-hub/internal/game"
	"kingdom-hub/internal/handler"
	"kingdom-hub/internal/service"
	"kingdom-hub/internal/shop"
)

// ErrNoToken is returned by New when no bot token is configured.
var ErrNoToken = errors.New("bot token is required")

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	accountHandler  *handler.AccountHandler
	gameHandler     *handler.GameHandler
	shopHandler     *handler.ShopHandler
	giveawayHandler *handler.GiveawayHandler
	adminHandler    *handler.AdminHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config      *config.Config
	Accounts    *service.AccountService
	Rewards     *service.RewardService
	Shop        *service.ShopService
	Admin       *service.AdminService
	Giveaways   *service.GiveawayService
	Ledger      *service.Ledger
	TxLog       *service.TransactionLog
	ConfigStore *service.ConfigStore
	Registry    *game.Registry
	Catalog     *shop.Catalog
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, ErrNoToken
	}

	timeout := deps.Config.Bot.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	teleBot, err := tele.NewBot(tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:             teleBot,
		cfg:             deps.Config,
		accountHandler:  handler.NewAccountHandler(deps.Accounts, deps.Rewards, deps.Shop, deps.Ledger, deps.TxLog, deps.Config.Admin.AccountID),
		gameHandler:     handler.NewGameHandler(deps.Rewards, deps.Registry),
		shopHandler:     handler.NewShopHandler(deps.Shop, deps.Accounts, deps.Catalog),
		giveawayHandler: handler.NewGiveawayHandler(deps.Giveaways),
		adminHandler:    handler.NewAdminHandler(deps.Admin, deps.ConfigStore),
	}

	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(LoggingMiddleware(deps.Ledger))
	b.registerHandlers()

	return b, nil
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	// Account
	b.bot.Handle("/start", b.accountHandler.HandleStart)
	b.bot.Handle("/me", b.accountHandler.HandleMe)
	b.bot.Handle("/daily", b.accountHandler.HandleDaily)
	b.bot.Handle("/history", b.accountHandler.HandleHistory)
	b.bot.Handle("/top", b.accountHandler.HandleTop)

	private := b.bot.Group()
	private.Use(PrivateOnlyMiddleware())
	private.Handle("/wallet", b.accountHandler.HandleWallet)

	// Games
	b.bot.Handle("/spin", b.gameHandler.HandleSpin)
	b.bot.Handle("/flip", b.gameHandler.HandleFlip)
	b.bot.Handle("/draw", b.gameHandler.HandleDraw)
	b.bot.Handle("/mine", b.gameHandler.HandleMine)

	// Shop
	b.bot.Handle("/shop", b.shopHandler.HandleShop)
	b.bot.Handle("/buy", b.shopHandler.HandleBuy)
	b.bot.Handle("/bag", b.shopHandler.HandleBag)

	// Giveaways
	b.bot.Handle("/giveaways", b.giveawayHandler.HandleGiveaways)
	b.bot.Handle("/enter", b.giveawayHandler.HandleEnter)

	// Admin
	admin := b.bot.Group()
	admin.Use(AdminMiddleware(b.cfg))
	admin.Handle("/admin_set", b.adminHandler.HandleAdminSet)
	admin.Handle("/admin_block", b.adminHandler.HandleAdminBlock)
	admin.Handle("/admin_delete", b.adminHandler.HandleAdminDelete)
	admin.Handle("/airdrop", b.adminHandler.HandleAirdrop)
	admin.Handle("/config", b.adminHandler.HandleConfig)
	admin.Handle("/payout", b.adminHandler.HandlePayout)
	admin.Handle("/giveaway_add", b.adminHandler.HandleGiveawayAdd)
	admin.Handle("/giveaway_close", b.adminHandler.HandleGiveawayClose)
	admin.Handle("/giveaway_delete", b.adminHandler.HandleGiveawayClose)

	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes callbacks to appropriate handlers.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	// Telebot v3 may add a \f prefix to callback data
	data := strings.TrimPrefix(callback.Data, "\f")
	if strings.HasPrefix(data, "shop_") {
		return b.shopHandler.HandleShopCallback(c)
	}

	log.Debug().Str("data", data).Msg("Unrouted callback")
	return c.Respond()
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("bot", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
