package timeline

import "time"

type EntryType string

const (
	EntryAdoptionRequested      EntryType = "ADOPTION_REQUESTED"
	EntryAdoptionAccepted       EntryType = "ADOPTION_ACCEPTED"
	EntryAdoptionRejected       EntryType = "ADOPTION_REJECTED"
	EntryVaccinationVerified    EntryType = "VACCINATION_VERIFIED"
	EntryNeuteringVerified      EntryType = "NEUTERING_VERIFIED"
	EntryAvailabilityReconciled EntryType = "AVAILABILITY_RECONCILED"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryAdoptionRequested, EntryAdoptionAccepted, EntryAdoptionRejected,
		EntryVaccinationVerified, EntryNeuteringVerified, EntryAvailabilityReconciled:
		return true
	}
	return false
}

// Entry es append-only: no hay update ni delete.
type Entry struct {
	ID    string
	PetID string
	Type  EntryType

	// RequestID es la solicitud de adopción que originó la entrada (vacío en reconciliación masiva).
	RequestID string
	Actor     string

	Title string
	Notes string

	OccurredAt time.Time
}
