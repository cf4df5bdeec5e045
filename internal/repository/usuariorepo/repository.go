package usuariorepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"siab/internal/domain"
	"siab/internal/errors"
	"siab/internal/pkg/database"
	"siab/internal/pkg/logger"
)

// UsuarioRepository implementa la persistencia de cuentas de usuario.
type UsuarioRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUsuarioRepository crea y retorna una instancia del repositorio de usuarios.
func NewUsuarioRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UsuarioRepository {
	return &UsuarioRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Guardar inserta un nuevo usuario.
func (r *UsuarioRepository) Guardar(ctx context.Context, u domain.Usuario) (domain.Usuario, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `
        INSERT INTO usuarios (id, email, nombre, password_hash, rol, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		u.ID, u.Email, u.Nombre, u.PasswordHash, u.Rol, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.Usuario{}, errors.NewConflictError(fmt.Sprintf("El email '%s' ya está en uso.", u.Email))
		}
		r.logger.Error("Falla al insertar usuario en el DB.", err)
		return domain.Usuario{}, errors.NewDBError("Falla al crear el usuario", err)
	}

	r.logger.Info("Usuario creado con éxito.", map[string]interface{}{"id": u.ID})
	return u, nil
}

// BuscarPorEmail busca un usuario por su email.
func (r *UsuarioRepository) BuscarPorEmail(ctx context.Context, email string) (domain.Usuario, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, email, nombre, password_hash, rol, created_at, updated_at
        FROM usuarios
        WHERE email = $1`

	var u domain.Usuario
	err := r.DB.QueryRowContext(ctxTimeout, query, email).Scan(
		&u.ID, &u.Email, &u.Nombre, &u.PasswordHash, &u.Rol, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Usuario{}, errors.NewNotFoundError(fmt.Sprintf("Usuario con email %s no encontrado.", email))
	}
	if err != nil {
		r.logger.Error("Falla al buscar usuario en el DB.", err)
		return domain.Usuario{}, errors.NewDBError("Falla al buscar el usuario", err)
	}
	return u, nil
}
