package domain

import "time"

// Usuario representa la cuenta de acceso al sistema.
type Usuario struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Nombre       string     `json:"nombre"`
	PasswordHash string     `json:"-"` // nunca se expone en las respuestas
	Rol          RolUsuario `json:"rol"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RolUsuario define el papel del usuario dentro del sistema.
type RolUsuario string

const (
	RolAdmin        RolUsuario = "ADMIN"
	RolUsuarioComun RolUsuario = "USUARIO"
)

// RegistroUsuario es el payload de entrada para el registro de cuentas.
type RegistroUsuario struct {
	Email    string `json:"email"`
	Nombre   string `json:"nombre"`
	Password string `json:"password"`
}
