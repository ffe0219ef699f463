package pets

import "time"

// Category es texto libre normalizado a minúsculas; estas son las que muestra el front.
type Category string

const (
	CategoryDog    Category = "dog"
	CategoryCat    Category = "cat"
	CategoryRabbit Category = "rabbit"
	CategoryBird   Category = "bird"
	CategoryFish   Category = "fish"
)

// Pet es una publicación de adopción.
// IsAdopted e IsAvailable son dos flags independientes en storage; el servicio los mueve juntos
// en una sola escritura (SetAdopted), pero nada impide que otra ruta toque solo uno.
type Pet struct {
	ID string

	// Quien publicó la mascota (no confundir con quien la adopta).
	OwnerUserID string
	OwnerEmail  string

	Name             string
	Category         Category
	Image            string
	ShortDescription string
	LongDescription  string
	Age              string
	Location         string

	IsAdopted   bool
	IsAvailable bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListFilter struct {
	Category      Category
	Query         string // búsqueda por nombre
	AvailableOnly bool
	Limit         int
}
