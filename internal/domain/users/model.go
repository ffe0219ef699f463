package users

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User es la cuenta. El email (en minúsculas) es la identidad natural; ID se usa como sub del token.
type User struct {
	ID        string
	Email     string
	Name      string
	PhotoURL  string
	Role      Role
	CreatedAt time.Time
}
