package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
