package users

import "time"

// User - учётная запись; её ID и есть владелец материалов и остатков.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session - то, что регистрация и вход отдают клиенту.
type Session struct {
	User  User
	Token string
}
