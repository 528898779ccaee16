package bot

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"kingdom-hub/internal/config"
	"kingdom-hub/internal/model"
)

// AdminMiddleware creates a middleware that checks if the user is an admin.
func AdminMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			if !cfg.IsAdmin(sender.ID) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Reply("❌ Permission denied: admin only")
			}

			return next(c)
		}
	}
}

// PrivateOnlyMiddleware drops updates that do not come from a private chat.
// Wallet and admin commands carry data that should not be echoed to groups.
func PrivateOnlyMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil || chat.Type != tele.ChatPrivate {
				log.Debug().
					Str("command", c.Text()).
					Msg("Ignoring private command outside private chat")
				return c.Reply("🔒 Send this command in a private chat with the bot")
			}
			return next(c)
		}
	}
}

// AccountLookup resolves the account behind an update for logging.
type AccountLookup interface {
	Get(id int64) (*model.Account, error)
}

// LoggingMiddleware logs every handled update with the resolved account,
// the command name and the handler result. Arguments are not logged since
// they may carry wallet addresses.
func LoggingMiddleware(accounts AccountLookup) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)

			event := log.Debug()
			if err != nil {
				event = log.Warn().Err(err)
			}
			if !event.Enabled() {
				return err
			}
			if sender := c.Sender(); sender != nil {
				event = event.Int64("account_id", sender.ID)
				if acc, lookupErr := accounts.Get(sender.ID); lookupErr == nil {
					event = event.Str("username", acc.Username).Int64("points", acc.Points).Bool("blocked", acc.Blocked)
				} else {
					event = event.Bool("registered", false)
				}
			}
			if chat := c.Chat(); chat != nil {
				event = event.Str("chat_type", string(chat.Type))
			}
			event.
				Str("command", commandOf(c)).
				Dur("elapsed", time.Since(start)).
				Msg("Update handled")
			return err
		}
	}
}

// RecoveryMiddleware turns a handler panic into an error reply so one bad
// update does not stop the poller.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					event := log.Error().Interface("panic", r).Str("command", commandOf(c))
					if sender := c.Sender(); sender != nil {
						event = event.Int64("account_id", sender.ID)
					}
					event.Msg("Handler panicked")
					_ = c.Reply("❌ Something went wrong, please try again later")
				}
			}()
			return next(c)
		}
	}
}

// commandOf names an update for logs: the command word of a message or the
// button id of a callback.
func commandOf(c tele.Context) string {
	if cb := c.Callback(); cb != nil {
		if cb.Unique != "" {
			return "callback:" + cb.Unique
		}
		data, _, _ := strings.Cut(strings.TrimPrefix(cb.Data, "\f"), "|")
		return "callback:" + data
	}
	command, _, _ := strings.Cut(strings.TrimSpace(c.Text()), " ")
	return command
}
