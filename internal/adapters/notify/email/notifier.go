package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption/internal/platform/httpclient"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/notify"
)

var ErrNotConfigured = errors.New("email provider not configured")

type Config struct {
	APIURL  string
	APIKey  string
	From    string
	Timeout time.Duration
}

// Notifier manda emails transaccionales vía un proveedor HTTP (POST /emails).
// Implementa notify.Notifier: cualquier falla termina en Result{Success:false}.
type Notifier struct {
	client *httpclient.Client
	from   string
	log    logger.Logger
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func New(cfg Config, log logger.Logger) (*Notifier, error) {
	if strings.TrimSpace(cfg.APIURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = logger.Nop()
	}

	c, err := httpclient.New(httpclient.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		Headers: map[string]string{"Authorization": "Bearer " + strings.TrimSpace(cfg.APIKey)},
	})
	if err != nil {
		return nil, fmt.Errorf("email: %w", err)
	}

	return &Notifier{
		client: c,
		from:   strings.TrimSpace(cfg.From),
		log:    log.With(map[string]any{"component": "email"}),
	}, nil
}

func (n *Notifier) Notify(ctx context.Context, kind notify.Kind, recipient string, data map[string]any) (res notify.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = notify.Failed(fmt.Errorf("email: panic: %v", r))
		}
	}()

	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return notify.Failed(errors.New("email: empty recipient"))
	}

	subject, body, err := render(kind, data)
	if err != nil {
		return notify.Failed(err)
	}

	err = n.client.PostJSON(ctx, "/emails", sendRequest{
		From:    n.from,
		To:      []string{recipient},
		Subject: subject,
		HTML:    body,
	}, nil)
	if err != nil {
		return notify.Failed(fmt.Errorf("email: send: %w", err))
	}

	n.log.Debug("email sent", map[string]any{"kind": string(kind), "to": recipient})
	return notify.Ok()
}
