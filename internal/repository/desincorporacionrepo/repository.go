package desincorporacionrepo

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

// DesincorporacionRepository implementa el acceso a datos del flujo de
// desincorporación. Aprobar no toca al bien; la mutación de estado a
// DESINCORPORADO ocurre dentro de la transacción de Ejecutar.
type DesincorporacionRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewDesincorporacionRepository crea y retorna una instancia del repositorio de desincorporaciones.
func NewDesincorporacionRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *DesincorporacionRepository {
	return &DesincorporacionRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const columnas = `id, bien_id, motivo, descripcion, valor_residual, documento_soporte,
        observaciones, estado, solicitada_por, aprobada_por, fecha_solicitud,
        fecha_aprobacion, fecha_ejecucion, created_at, updated_at`

func escanear(row interface{ Scan(...interface{}) error }) (domain.Desincorporacion, error) {
	var d domain.Desincorporacion
	var aprobadaPor sql.NullString
	var aprobacion, ejecucion sql.NullTime

	err := row.Scan(
		&d.ID, &d.BienID, &d.Motivo, &d.Descripcion, &d.ValorResidual, &d.DocumentoSoporte,
		&d.Observaciones, &d.Estado, &d.SolicitadaPor, &aprobadaPor, &d.FechaSolicitud,
		&aprobacion, &ejecucion, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return domain.Desincorporacion{}, err
	}
	if aprobadaPor.Valid {
		d.AprobadaPor = aprobadaPor.String
	}
	if aprobacion.Valid {
		d.FechaAprobacion = &aprobacion.Time
	}
	if ejecucion.Valid {
		d.FechaEjecucion = &ejecucion.Time
	}
	return d, nil
}

// Crear persiste la desincorporación en estado PENDIENTE. El índice único
// parcial sobre (bien_id) WHERE estado = 'PENDIENTE' resuelve la carrera de
// creación concurrente como violación de unicidad.
func (r *DesincorporacionRepository) Crear(ctx context.Context, d domain.Desincorporacion) (domain.Desincorporacion, error) {
	r.logger.Debug("Iniciando creación de desincorporación en el repositorio.", map[string]interface{}{"bien_id": d.BienID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	d.Estado = domain.DesincorporacionPendiente
	d.FechaSolicitud = now
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
        INSERT INTO desincorporaciones (id, bien_id, motivo, descripcion, valor_residual,
            documento_soporte, observaciones, estado, solicitada_por, fecha_solicitud,
            created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		d.ID, d.BienID, d.Motivo, d.Descripcion, d.ValorResidual,
		d.DocumentoSoporte, d.Observaciones, d.Estado, d.SolicitadaPor, d.FechaSolicitud,
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Warn("Desincorporación pendiente duplicada detectada por restricción única.", map[string]interface{}{"bien_id": d.BienID})
			return domain.Desincorporacion{}, errors.NewConflictError("Ya existe una desincorporación pendiente para este bien.")
		}
		r.logger.Error("Falla al insertar desincorporación en el DB.", err)
		return domain.Desincorporacion{}, errors.NewDBError("Falla al crear la desincorporación", err)
	}

	r.logger.Info("Desincorporación creada con éxito.", map[string]interface{}{"id": d.ID, "bien_id": d.BienID})
	return d, nil
}

// BuscarPorID busca una desincorporación por su id.
func (r *DesincorporacionRepository) BuscarPorID(ctx context.Context, id string) (domain.Desincorporacion, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + columnas + ` FROM desincorporaciones WHERE id = $1`

	d, err := escanear(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Desincorporacion{}, errors.NewNotFoundError(fmt.Sprintf("Desincorporación con ID %s no encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falla al buscar desincorporación en el DB.", err)
		return domain.Desincorporacion{}, errors.NewDBError("Falla al buscar la desincorporación", err)
	}
	return d, nil
}

// ExistePendientePorBien indica si el bien tiene una desincorporación PENDIENTE.
func (r *DesincorporacionRepository) ExistePendientePorBien(ctx context.Context, bienID string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var existe bool
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT EXISTS (SELECT 1 FROM desincorporaciones WHERE bien_id = $1 AND estado = $2)`,
		bienID, domain.DesincorporacionPendiente,
	).Scan(&existe)
	if err != nil {
		r.logger.Error("Falla al verificar desincorporación pendiente.", err)
		return false, errors.NewDBError("Falla al verificar desincorporaciones pendientes", err)
	}
	return existe, nil
}

// Aprobar marca la desincorporación como APROBADA. No muta al bien: la
// ejecución es una compuerta separada y deliberada.
func (r *DesincorporacionRepository) Aprobar(ctx context.Context, id, aprobadaPor string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()

	result, err := r.DB.ExecContext(ctxTimeout, `
        UPDATE desincorporaciones
        SET estado = $1, aprobada_por = $2, fecha_aprobacion = $3, updated_at = $3
        WHERE id = $4 AND estado = $5`,
		domain.DesincorporacionAprobada, aprobadaPor, now, id, domain.DesincorporacionPendiente,
	)
	if err != nil {
		r.logger.Error("Falla al aprobar desincorporación.", err)
		return errors.NewDBError("Falla al aprobar la desincorporación", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NewConflictError("La desincorporación ya no está pendiente; fue resuelta por otra operación.")
	}

	r.logger.Info("Desincorporación aprobada.", map[string]interface{}{"id": id})
	return nil
}

// Rechazar marca la desincorporación como RECHAZADA.
func (r *DesincorporacionRepository) Rechazar(ctx context.Context, id, aprobadaPor, observaciones string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()

	result, err := r.DB.ExecContext(ctxTimeout, `
        UPDATE desincorporaciones
        SET estado = $1, aprobada_por = $2,
            observaciones = CASE WHEN $3 <> '' THEN $3 ELSE observaciones END,
            updated_at = $4
        WHERE id = $5 AND estado = $6`,
		domain.DesincorporacionRechazada, aprobadaPor, observaciones, now, id, domain.DesincorporacionPendiente,
	)
	if err != nil {
		r.logger.Error("Falla al rechazar desincorporación.", err)
		return errors.NewDBError("Falla al rechazar la desincorporación", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NewConflictError("La desincorporación ya no está pendiente; fue resuelta por otra operación.")
	}

	r.logger.Info("Desincorporación rechazada.", map[string]interface{}{"id": id})
	return nil
}

// Ejecutar marca la desincorporación como EJECUTADA y pone al bien en estado
// DESINCORPORADO, en una misma transacción.
func (r *DesincorporacionRepository) Ejecutar(ctx context.Context, d domain.Desincorporacion) (domain.Desincorporacion, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Desincorporacion{}, errors.NewDBError("Falla al iniciar transacción", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctxTimeout, `
        UPDATE desincorporaciones
        SET estado = $1, fecha_ejecucion = $2, updated_at = $2
        WHERE id = $3 AND estado = $4`,
		domain.DesincorporacionEjecutada, now, d.ID, domain.DesincorporacionAprobada,
	)
	if err != nil {
		r.logger.Error("Falla al ejecutar desincorporación.", err)
		return domain.Desincorporacion{}, errors.NewDBError("Falla al ejecutar la desincorporación", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.Desincorporacion{}, errors.NewConflictError("La desincorporación no está aprobada; no puede ejecutarse.")
	}

	result, err = tx.ExecContext(ctxTimeout, `
        UPDATE bienes
        SET estado = $1, updated_at = $2
        WHERE id = $3`,
		domain.BienDesincorporado, now, d.BienID,
	)
	if err != nil {
		r.logger.Error("Falla al marcar el bien como desincorporado.", err)
		return domain.Desincorporacion{}, errors.NewDBError("Falla al actualizar el estado del bien", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.Desincorporacion{}, errors.NewNotFoundError(fmt.Sprintf("Bien con ID %s no encontrado.", d.BienID))
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return domain.Desincorporacion{}, errors.NewDBError("Falla al comprometer la transacción", commitErr)
	}

	d.Estado = domain.DesincorporacionEjecutada
	d.FechaEjecucion = &now
	d.UpdatedAt = now

	r.logger.Info("Desincorporación ejecutada; bien retirado del inventario activo.", map[string]interface{}{
		"id": d.ID, "bien_id": d.BienID,
	})
	return d, nil
}

// Eliminar borra una desincorporación PENDIENTE (cancelación del solicitante).
func (r *DesincorporacionRepository) Eliminar(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`DELETE FROM desincorporaciones WHERE id = $1 AND estado = $2`,
		id, domain.DesincorporacionPendiente,
	)
	if err != nil {
		r.logger.Error("Falla al eliminar desincorporación.", err)
		return errors.NewDBError("Falla al eliminar la desincorporación", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NewConflictError("La desincorporación ya no está pendiente; no puede cancelarse.")
	}

	r.logger.Info("Desincorporación cancelada y eliminada.", map[string]interface{}{"id": id})
	return nil
}
