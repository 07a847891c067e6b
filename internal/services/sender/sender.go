// Package sender содержит воркер, отправляющий письма-напоминания
// об истекающих пакетах из очереди уведомлений.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// Transport описывает почтовый транспорт.
type Transport interface {
	Connect() (*smtp.Client, error)
	GetSMTPUser() string
}

// Service отправляет напоминания почтой.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// NewService создает новый Service.
func NewService(transport Transport, log *slog.Logger) *Service {
	return &Service{transport: transport, log: log}
}

// SendExpiringPurchaseNotice обрабатывает одно сообщение очереди:
// разбирает данные покупки и отправляет письмо владельцу.
func (s *Service) SendExpiringPurchaseNotice(body []byte) error {
	var message models.ExpiringPurchaseInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Уведомление о скором окончании пакета"
	bodyText := fmt.Sprintf(
		"Здравствуйте, %s!\n\nВаш пакет «%s» заканчивается %s.\n\nЧтобы не потерять доступ к программам, продлите его заранее.",
		message.Username, message.PackageName, message.ExpiresAt.Format("02.01.2006"))

	return s.sendEmail(to, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	const op = "sender.sendEmail"

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := client.Quit(); err != nil {
			s.log.Warn("failed to quit smtp client", sl.Err(err))
		}
	}()

	from := s.transport.GetSMTPUser()
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		bodyText,
	}, "\r\n")
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
