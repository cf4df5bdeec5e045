package auditoriarepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"siab/internal/domain"
	"siab/internal/errors"
	"siab/internal/pkg/logger"
)

// AuditoriaRepository implementa la bitácora de movimientos. Es un sumidero:
// los servicios escriben después de cada mutación y el fallo nunca se propaga.
type AuditoriaRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewAuditoriaRepository crea y retorna una instancia del repositorio de auditoría.
func NewAuditoriaRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *AuditoriaRepository {
	return &AuditoriaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Registrar inserta una entrada en la bitácora.
func (r *AuditoriaRepository) Registrar(ctx context.Context, entrada domain.Auditoria) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if entrada.ID == "" {
		entrada.ID = uuid.New().String()
	}
	if entrada.Fecha.IsZero() {
		entrada.Fecha = time.Now().UTC()
	}

	query := `
        INSERT INTO auditoria (id, entidad, entidad_id, accion, usuario_id, detalle, fecha)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		entrada.ID, entrada.Entidad, entrada.EntidadID, entrada.Accion,
		entrada.UsuarioID, entrada.Detalle, entrada.Fecha,
	)
	if err != nil {
		return errors.NewDBError("Falla al registrar la auditoría", err)
	}
	return nil
}

// Historial retorna las entradas de una entidad, la más reciente primero.
func (r *AuditoriaRepository) Historial(ctx context.Context, entidad, entidadID string) ([]domain.Auditoria, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, entidad, entidad_id, accion, usuario_id, detalle, fecha
        FROM auditoria
        WHERE entidad = $1 AND entidad_id = $2
        ORDER BY fecha DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, entidad, entidadID)
	if err != nil {
		r.logger.Error("Falla al consultar el historial de auditoría.", err)
		return nil, errors.NewDBError("Falla al consultar el historial", err)
	}
	defer rows.Close()

	var entradas []domain.Auditoria
	for rows.Next() {
		var e domain.Auditoria
		if err := rows.Scan(&e.ID, &e.Entidad, &e.EntidadID, &e.Accion, &e.UsuarioID, &e.Detalle, &e.Fecha); err != nil {
			return nil, errors.NewDBError("Falla al mapear el historial", err)
		}
		entradas = append(entradas, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Error tras la iteración del historial", err)
	}
	return entradas, nil
}
