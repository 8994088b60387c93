package app

import (
	"context"
	"fmt"
	"strings"

	"railwatch/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// NotificationService sends free-form messages that bypass the dedup gate,
// such as connectivity checks requested by the admin.
type NotificationService struct {
	transport notification.Transport
	logger    *logrus.Entry
}

func NewNotificationService(transport notification.Transport, logger *logrus.Entry) *NotificationService {
	return &NotificationService{transport: transport, logger: logger}
}

// SendMessage delivers message to target with the standard title.
func (s *NotificationService) SendMessage(ctx context.Context, target, message string) error {
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("notification target is empty")
	}
	if err := s.transport.Send(ctx, target, NotificationTitle, message, notification.PriorityHigh); err != nil {
		s.logger.WithError(err).WithField("target", target).Error("Failed to send direct message")
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	s.logger.WithField("target", target).Info("Direct message sent")
	return nil
}
