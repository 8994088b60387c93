package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"railwatch/internal/domain/notification"

	"gopkg.in/telebot.v3"
)

type sentMessage struct {
	chatID int64
	text   string
	opts   *telebot.SendOptions
}

type fakeClient struct {
	sent  []sentMessage
	err   error
	block chan struct{}
}

func (f *fakeClient) SendMessage(chatID int64, text string, opts *telebot.SendOptions) error {
	if f.block != nil {
		<-f.block
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, opts: opts})
	return f.err
}

func TestTransport_Send(t *testing.T) {
	tests := []struct {
		name       string
		priority   notification.Priority
		wantSilent bool
	}{
		{"high priority notifies", notification.PriorityHigh, false},
		{"normal priority is silent", notification.PriorityNormal, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			tr := NewTransport(client)

			err := tr.Send(context.Background(), "-100123", "RailWatch", "FOO -> BAR @ 12:00", tt.priority)
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if len(client.sent) != 1 {
				t.Fatalf("sent %d messages, want 1", len(client.sent))
			}
			msg := client.sent[0]
			if msg.chatID != -100123 {
				t.Errorf("chatID = %d", msg.chatID)
			}
			if msg.text != "RailWatch\nFOO -> BAR @ 12:00" {
				t.Errorf("text = %q", msg.text)
			}
			if msg.opts.DisableNotification != tt.wantSilent {
				t.Errorf("DisableNotification = %v, want %v", msg.opts.DisableNotification, tt.wantSilent)
			}
		})
	}
}

func TestTransport_SendErrors(t *testing.T) {
	boom := errors.New("boom")
	tr := NewTransport(&fakeClient{err: boom})
	if err := tr.Send(context.Background(), "1", "t", "b", notification.PriorityHigh); !errors.Is(err, boom) {
		t.Errorf("expected client error, got %v", err)
	}

	client := &fakeClient{}
	tr = NewTransport(client)
	if err := tr.Send(context.Background(), "not-a-chat", "t", "b", notification.PriorityHigh); err == nil {
		t.Error("expected an error for a non-numeric target")
	}
	if len(client.sent) != 0 {
		t.Error("nothing should be sent to an invalid target")
	}
}

func TestTransport_SendHonoursContext(t *testing.T) {
	client := &fakeClient{block: make(chan struct{})}
	defer close(client.block)
	tr := NewTransport(client)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tr.Send(ctx, "1", "t", "b", notification.PriorityHigh)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestFormatMessage(t *testing.T) {
	if got := FormatMessage("", "body"); got != "body" {
		t.Errorf("FormatMessage without title = %q", got)
	}
	if got := FormatMessage("T", "body"); got != "T\nbody" {
		t.Errorf("FormatMessage = %q", got)
	}
}

func TestParseTarget(t *testing.T) {
	if id, err := ParseTarget(" 42 "); err != nil || id != 42 {
		t.Errorf("ParseTarget(42) = %d, %v", id, err)
	}
	if _, err := ParseTarget("@channel"); err == nil {
		t.Error("expected an error for a username target")
	}
}
