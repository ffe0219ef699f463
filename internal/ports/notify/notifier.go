package notify

import "context"

//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks

// Kind identifica el template de email transaccional.
type Kind string

const (
	KindRequestReceived Kind = "adoption_request_received" // al dueño, al crear la solicitud
	KindRequestAccepted Kind = "adoption_request_accepted" // al solicitante
	KindRequestRejected Kind = "adoption_request_rejected" // al solicitante
)

// Result es lo único que devuelve Notify: nunca hay error ni panic hacia el caller,
// que debe mirar Success.
type Result struct {
	Success bool
	Error   string
}

func Ok() Result { return Result{Success: true} }

func Failed(err error) Result {
	if err == nil {
		return Result{Success: false, Error: "unknown error"}
	}
	return Result{Success: false, Error: err.Error()}
}

type Notifier interface {
	Notify(ctx context.Context, kind Kind, recipient string, data map[string]any) Result
}
