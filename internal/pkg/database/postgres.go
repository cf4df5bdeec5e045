package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
)

// NewPostgresDB inicializa y configura el pool de conexiones con PostgreSQL.
// Retorna la conexión *sql.DB lista para usar.
func NewPostgresDB(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falla al abrir la conexión con el DB: %w", err)
	}

	// Ping inmediato: garantiza credenciales y servidor correctos antes de servir.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falla en el ping inicial al DB: %w", err)
	}

	// Configuración del pool de conexiones.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	log.Println("Pool de conexiones PostgreSQL configurado y listo.")

	return db, nil
}

// uniqueViolation es el código SQLSTATE de PostgreSQL para violación de
// restricción de unicidad.
const uniqueViolation = "23505"

// IsUniqueViolation indica si el error proviene de una restricción única del
// DB. Los repositorios lo usan para traducir la carrera check-then-act en un
// ConflictError de negocio en lugar de un 500 crudo.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}
