package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"railwatch/internal/domain/notification"
	domainTelegram "railwatch/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// Transport delivers notifications as Telegram messages. Targets are chat IDs.
type Transport struct {
	client domainTelegram.Client
}

func NewTransport(client domainTelegram.Client) *Transport {
	return &Transport{client: client}
}

// ParseTarget converts a notification target into a Telegram chat ID.
func ParseTarget(target string) (int64, error) {
	chatID, err := strconv.ParseInt(strings.TrimSpace(target), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("notification target %q is not a Telegram chat ID: %w", target, err)
	}
	return chatID, nil
}

// FormatMessage joins title and body into the message text.
func FormatMessage(title, body string) string {
	if title == "" {
		return body
	}
	return title + "\n" + body
}

// Send gives up when ctx is done even if the Bot API call is still pending;
// the message may then still arrive and be sent again on a later cycle.
func (t *Transport) Send(ctx context.Context, target, title, body string, priority notification.Priority) error {
	chatID, err := ParseTarget(target)
	if err != nil {
		return err
	}
	opts := &telebot.SendOptions{
		DisableNotification: priority != notification.PriorityHigh,
	}

	done := make(chan error, 1)
	go func() {
		done <- t.client.SendMessage(chatID, FormatMessage(title, body), opts)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
