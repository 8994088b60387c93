package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"railwatch/internal/app"
	"railwatch/internal/domain/watch"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const msgUnauthorized = "Error: you are not allowed to run this command."

// RegisterAdminHandlers registers the watch management commands.
// It requires the bot instance, admin service, and the configured admin Telegram ID.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, notifService *app.NotificationService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/watch", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/watch", c)
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgUnauthorized)
		}

		w, err := parseWatchArgs(c.Args(), chatTarget(c))
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send(fmt.Sprintf("Invalid watch: %s\nUsage: /watch %s", err, watchUsage))
		}
		handlerLogger = handlerLogger.WithField("watch", w.String())

		err = adminService.AddWatch(ctx, c.Sender().ID, w)
		switch {
		case err == nil:
		case errors.Is(err, app.ErrWatchAlreadyExists):
			handlerLogger.Info("Watch already exists")
			return c.Send("That watch already exists.")
		case errors.Is(err, watch.ErrInvalidWindow):
			handlerLogger.WithError(err).Warn("Watch rejected")
			return c.Send(fmt.Sprintf("Invalid watch: %s", err))
		default:
			handlerLogger.WithError(err).Error("Failed to add watch")
			return c.Send(fmt.Sprintf("Failed to add watch: %s", err))
		}

		handlerLogger.Info("Watch added successfully")
		reply := fmt.Sprintf("Watching %s.", w)
		if w.Start >= w.End {
			reply += "\nNote: the start time is not before the end time, so this watch will never trigger."
		}
		return c.Send(reply)
	})

	b.Handle("/unwatch", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/unwatch", c)
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgUnauthorized)
		}

		w, err := parseWatchArgs(c.Args(), chatTarget(c))
		if err != nil {
			return c.Send(fmt.Sprintf("Invalid watch: %s\nUsage: /unwatch %s", err, watchUsage))
		}

		if err := adminService.RemoveWatch(ctx, c.Sender().ID, w); err != nil {
			if errors.Is(err, app.ErrWatchNotFound) {
				return c.Send("No such watch.")
			}
			handlerLogger.WithError(err).Error("Failed to remove watch")
			return c.Send(fmt.Sprintf("Failed to remove watch: %s", err))
		}
		return c.Send(fmt.Sprintf("Stopped watching %s.", w))
	})

	setState := func(command string, state watch.State, done string) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			handlerLogger := commandLogger(baseLogger, command, c)
			if c.Sender().ID != adminTelegramID {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(msgUnauthorized)
			}

			w, err := parseWatchArgs(c.Args(), chatTarget(c))
			if err != nil {
				return c.Send(fmt.Sprintf("Invalid watch: %s\nUsage: %s %s", err, command, watchUsage))
			}
			if err := adminService.SetWatchState(ctx, c.Sender().ID, w, state); err != nil {
				if errors.Is(err, app.ErrWatchNotFound) {
					return c.Send("No such watch.")
				}
				handlerLogger.WithError(err).Error("Failed to change watch state")
				return c.Send(fmt.Sprintf("Failed to update watch: %s", err))
			}
			return c.Send(fmt.Sprintf("%s %s.", done, w))
		}
	}
	b.Handle("/pause", setState("/pause", watch.StateDisabled, "Paused"))
	b.Handle("/resume", setState("/resume", watch.StateEnabled, "Resumed"))

	b.Handle("/watches", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/watches", c)
		windows, err := adminService.ListWatches(ctx, c.Sender().ID)
		if err != nil {
			if errors.Is(err, app.ErrAdminNotAuthorized) {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(msgUnauthorized)
			}
			handlerLogger.WithError(err).Error("Failed to list watches")
			return c.Send(fmt.Sprintf("Failed to list watches: %s", err))
		}
		if len(windows) == 0 {
			return c.Send("No watches configured.")
		}

		var response strings.Builder
		response.WriteString("--- Watches ---\n")
		for i, w := range windows {
			response.WriteString(describeWatch(i, w))
			response.WriteString("\n")
		}
		return c.Send(response.String())
	})

	b.Handle("/clear", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/clear", c)
		if err := adminService.ClearWatches(ctx, c.Sender().ID); err != nil {
			if errors.Is(err, app.ErrAdminNotAuthorized) {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(msgUnauthorized)
			}
			handlerLogger.WithError(err).Error("Failed to clear watches")
			return c.Send(fmt.Sprintf("Failed to clear watches: %s", err))
		}
		return c.Send("All watches removed.")
	})

	b.Handle("/ping", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/ping", c)
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgUnauthorized)
		}

		target := chatTarget(c)
		if args := c.Args(); len(args) == 1 {
			target = args[0]
		}
		if err := notifService.SendMessage(ctx, target, "Test notification"); err != nil {
			handlerLogger.WithError(err).Warn("Test notification failed")
			return c.Send(fmt.Sprintf("Test notification failed: %s", err))
		}
		return c.Send(fmt.Sprintf("Test notification sent to %s.", target))
	})
}

func commandLogger(base *logrus.Entry, command string, c telebot.Context) *logrus.Entry {
	return base.WithFields(logrus.Fields{
		"handler":   command,
		"sender_id": c.Sender().ID,
	})
}

func chatTarget(c telebot.Context) string {
	return strconv.FormatInt(c.Chat().ID, 10)
}
