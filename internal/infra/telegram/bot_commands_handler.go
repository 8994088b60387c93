package telegram

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(b *telebot.Bot, adminTelegramID int64, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /start command")

		if c.Sender().ID == adminTelegramID {
			return c.Send(fmt.Sprintf("Hello %s! RailWatch is running. Use /help for the list of commands.", c.Sender().FirstName))
		}
		return c.Send(fmt.Sprintf("Hello! This chat's ID is %d. Ask the administrator to add a watch for it.", c.Chat().ID))
	})

	b.Handle("/help", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /help command")

		if c.Sender().ID != adminTelegramID {
			return c.Send("RailWatch sends train departure times for the journeys the administrator set up for this chat.")
		}

		var helpText strings.Builder
		helpText.WriteString("Admin commands:\n\n")
		helpText.WriteString("/watch " + watchUsage + "\n - Watch a journey. Days: all, weekdays, weekends or mon,tue,...\n\n")
		helpText.WriteString("/unwatch " + watchUsage + "\n - Remove a watch.\n\n")
		helpText.WriteString("/pause " + watchUsage + "\n/resume " + watchUsage + "\n - Pause or resume a watch.\n\n")
		helpText.WriteString("/watches\n - List watches.\n\n")
		helpText.WriteString("/clear\n - Remove every watch.\n\n")
		helpText.WriteString("/ping [chat ID]\n - Send a test notification.")
		return c.Send(helpText.String())
	})
}
