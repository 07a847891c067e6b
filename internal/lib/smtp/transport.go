// Package smtp реализует почтовый транспорт для писем-напоминаний.
package smtp

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	"github.com/magabrotheeeer/coach-hub/internal/config"
)

// Transport реализует SMTP транспорт для отправки писем.
type Transport struct {
	cfg *config.Config
}

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg *config.Config) *Transport {
	return &Transport{cfg: cfg}
}

// Connect открывает соединение с SMTP сервером, поднимает STARTTLS
// и проходит аутентификацию.
func (t *Transport) Connect() (*smtp.Client, error) {
	const op = "smtp.Connect"

	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)
	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: t.cfg.SMTPHost}
		if err := client.StartTLS(tlsConfig); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

// GetSMTPUser возвращает адрес отправителя.
func (t *Transport) GetSMTPUser() string {
	return t.cfg.SMTPUser
}
