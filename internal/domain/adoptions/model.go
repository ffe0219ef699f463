package adoptions

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

type VerificationKind string

const (
	VerificationVaccination VerificationKind = "vaccination"
	VerificationNeutering   VerificationKind = "neutering"
)

// Request es una solicitud de adopción.
// Los datos de la mascota son un snapshot al momento de crearla: no se actualizan si la publicación cambia.
// PetID es referencia blanda, la mascota puede no existir.
type Request struct {
	ID string

	RequesterEmail   string
	RequesterName    string
	RequesterAddress string
	Phone            string
	OwnerEmail       string

	PetID            string
	PetName          string
	Category         string
	Image            string
	ShortDescription string
	LongDescription  string

	Status Status

	// Se guarda pero ninguna regla lo lee.
	AgreementAccepted bool

	VaccinationVerified bool
	VaccinationProof    string
	NeuteringVerified   bool
	NeuteringProof      string

	// VetVerified = alguna verificación registrada alguna vez (OR), no "verificación completa".
	VetVerified bool
	VerifiedAt  *time.Time

	CreatedAt time.Time
}

// HealthPending: aceptada y con alguna de las dos verificaciones faltante.
func (r Request) HealthPending() bool {
	return r.Status == StatusAccepted && (!r.VaccinationVerified || !r.NeuteringVerified)
}
