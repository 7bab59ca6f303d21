// notify — исходящая отправка писем восстановления пароля.
//
// Sender — контракт, который нужен сервисному слою; HTTPSender — адаптер к
// EmailJS-совместимому API ("send template" по HTTP). Повторы отправки не
// выполняются: это политика самого почтового сервиса.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pribylovaa/auth-service/internal/config"
)

// ErrDeliveryFailed — почтовый сервис не принял письмо (не-2xx, сеть, таймаут).
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Message — параметры шаблона письма (например, url ссылки восстановления).
type Message struct {
	TemplateParams map[string]string
}

// Sender отправляет письмо по шаблону.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// payload — тело запроса send-template.
type payload struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// HTTPSender отправляет письма POST-запросом на SendURL.
type HTTPSender struct {
	cfg    config.MailConfig
	client *http.Client
}

// NewHTTPSender создаёт отправителя с ограниченным таймаутом на запрос.
func NewHTTPSender(cfg config.MailConfig) *HTTPSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPSender{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Send выполняет один запрос к почтовому сервису.
// Любой исход, кроме 2xx, возвращается как ErrDeliveryFailed.
func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	const op = "notify.HTTPSender.Send"

	body, err := json.Marshal(payload{
		ServiceID:      s.cfg.ServiceID,
		TemplateID:     s.cfg.TemplateID,
		UserID:         s.cfg.UserID,
		TemplateParams: msg.TemplateParams,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: %w: status %d: %s", op, ErrDeliveryFailed, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Проверка на соответствие интерфейсу Sender.
var _ Sender = (*HTTPSender)(nil)
