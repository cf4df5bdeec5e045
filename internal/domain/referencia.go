package domain

import "time"

// Ubicacion representa una unidad administrativa del centro de salud
// (departamento, servicio o depósito). El código es la clave de negocio;
// el almacén central se identifica por un código bien conocido que se
// resuelve una sola vez al arrancar la aplicación.
type Ubicacion struct {
	ID        string    `json:"id"`
	Codigo    string    `json:"codigo"` // único
	Nombre    string    `json:"nombre"`
	Tipo      string    `json:"tipo,omitempty"` // e.g. "DEPARTAMENTO", "DEPOSITO"
	Activa    bool      `json:"activa"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Responsable representa a la persona que custodia bienes dentro de una unidad.
type Responsable struct {
	ID        string    `json:"id"`
	Cedula    string    `json:"cedula"` // única
	Nombre    string    `json:"nombre"`
	Cargo     string    `json:"cargo,omitempty"`
	Activo    bool      `json:"activo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Categoria es la tabla de clasificación de bienes.
type Categoria struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}
