package logonly

import (
	"context"

	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/notify"
)

// Notifier se usa en dev o cuando no hay proveedor de email: solo deja registro.
type Notifier struct {
	log logger.Logger
}

func New(log logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{log: log.With(map[string]any{"component": "notify-logonly"})}
}

func (n *Notifier) Notify(_ context.Context, kind notify.Kind, recipient string, data map[string]any) notify.Result {
	n.log.Info("notification (not sent)", map[string]any{
		"kind": string(kind),
		"to":   recipient,
		"data": data,
	})
	return notify.Ok()
}
