package transferenciarepo

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

// TransferenciaRepository implementa el acceso a datos del flujo de
// transferencias. Las transiciones que mutan al bien (aprobar, ejecutar,
// devolver) corren en una transacción con guarda de estado en el UPDATE: si
// otra solicitud ganó la carrera, cero filas afectadas se traduce a conflicto.
type TransferenciaRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewTransferenciaRepository crea y retorna una instancia del repositorio de transferencias.
func NewTransferenciaRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *TransferenciaRepository {
	return &TransferenciaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const columnas = `id, bien_id, ubicacion_origen_id, responsable_origen_id,
        ubicacion_destino_id, responsable_destino_id, motivo, tipo, fecha_retorno_prevista,
        observaciones, estado, solicitada_por, aprobada_por, fecha_solicitud,
        fecha_aprobacion, fecha_ejecucion, fecha_devolucion, created_at, updated_at`

func escanear(row interface{ Scan(...interface{}) error }) (domain.Transferencia, error) {
	var t domain.Transferencia
	var retorno, aprobacion, ejecucion, devolucion sql.NullTime
	var aprobadaPor sql.NullString

	err := row.Scan(
		&t.ID, &t.BienID, &t.UbicacionOrigenID, &t.ResponsableOrigenID,
		&t.UbicacionDestinoID, &t.ResponsableDestinoID, &t.Motivo, &t.Tipo, &retorno,
		&t.Observaciones, &t.Estado, &t.SolicitadaPor, &aprobadaPor, &t.FechaSolicitud,
		&aprobacion, &ejecucion, &devolucion, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.Transferencia{}, err
	}
	if retorno.Valid {
		t.FechaRetornoPrevista = &retorno.Time
	}
	if aprobadaPor.Valid {
		t.AprobadaPor = aprobadaPor.String
	}
	if aprobacion.Valid {
		t.FechaAprobacion = &aprobacion.Time
	}
	if ejecucion.Valid {
		t.FechaEjecucion = &ejecucion.Time
	}
	if devolucion.Valid {
		t.FechaDevolucion = &devolucion.Time
	}
	return t, nil
}

// Crear persiste la transferencia en estado PENDIENTE. El índice único
// parcial sobre (bien_id) WHERE estado = 'PENDIENTE' convierte la carrera de
// creación concurrente en una violación que acá se traduce a ConflictError.
func (r *TransferenciaRepository) Crear(ctx context.Context, t domain.Transferencia) (domain.Transferencia, error) {
	r.logger.Debug("Iniciando creación de transferencia en el repositorio.", map[string]interface{}{"bien_id": t.BienID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	t.Estado = domain.TransferenciaPendiente
	t.FechaSolicitud = now
	t.CreatedAt = now
	t.UpdatedAt = now

	query := `
        INSERT INTO transferencias (id, bien_id, ubicacion_origen_id, responsable_origen_id,
            ubicacion_destino_id, responsable_destino_id, motivo, tipo, fecha_retorno_prevista,
            observaciones, estado, solicitada_por, fecha_solicitud, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	var retorno interface{}
	if t.FechaRetornoPrevista != nil {
		retorno = *t.FechaRetornoPrevista
	}

	_, err := r.DB.ExecContext(ctxTimeout, query,
		t.ID, t.BienID, t.UbicacionOrigenID, t.ResponsableOrigenID,
		t.UbicacionDestinoID, t.ResponsableDestinoID, t.Motivo, t.Tipo, retorno,
		t.Observaciones, t.Estado, t.SolicitadaPor, t.FechaSolicitud, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Warn("Transferencia pendiente duplicada detectada por restricción única.", map[string]interface{}{"bien_id": t.BienID})
			return domain.Transferencia{}, errors.NewConflictError("Ya existe una transferencia pendiente para este bien.")
		}
		r.logger.Error("Falla al insertar transferencia en el DB.", err)
		return domain.Transferencia{}, errors.NewDBError("Falla al crear la transferencia", err)
	}

	r.logger.Info("Transferencia creada con éxito.", map[string]interface{}{"id": t.ID, "bien_id": t.BienID})
	return t, nil
}

// BuscarPorID busca una transferencia por su id.
func (r *TransferenciaRepository) BuscarPorID(ctx context.Context, id string) (domain.Transferencia, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + columnas + ` FROM transferencias WHERE id = $1`

	t, err := escanear(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Transferencia{}, errors.NewNotFoundError(fmt.Sprintf("Transferencia con ID %s no encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falla al buscar transferencia en el DB.", err)
		return domain.Transferencia{}, errors.NewDBError("Falla al buscar la transferencia", err)
	}
	return t, nil
}

// ExistePendientePorBien indica si el bien tiene una transferencia PENDIENTE.
func (r *TransferenciaRepository) ExistePendientePorBien(ctx context.Context, bienID string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var existe bool
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT EXISTS (SELECT 1 FROM transferencias WHERE bien_id = $1 AND estado = $2)`,
		bienID, domain.TransferenciaPendiente,
	).Scan(&existe)
	if err != nil {
		r.logger.Error("Falla al verificar transferencia pendiente.", err)
		return false, errors.NewDBError("Falla al verificar transferencias pendientes", err)
	}
	return existe, nil
}

// ListarPorBien retorna el historial de transferencias de un bien, la más
// reciente primero.
func (r *TransferenciaRepository) ListarPorBien(ctx context.Context, bienID string) ([]domain.Transferencia, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + columnas + ` FROM transferencias WHERE bien_id = $1 ORDER BY fecha_solicitud DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, bienID)
	if err != nil {
		r.logger.Error("Falla al listar transferencias por bien.", err)
		return nil, errors.NewDBError("Falla al listar transferencias", err)
	}
	defer rows.Close()

	var transferencias []domain.Transferencia
	for rows.Next() {
		t, err := escanear(rows)
		if err != nil {
			return nil, errors.NewDBError("Falla al mapear transferencias del DB", err)
		}
		transferencias = append(transferencias, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Error tras la iteración de transferencias", err)
	}
	return transferencias, nil
}

// Aprobar marca la transferencia como APROBADA y aplica la custodia destino
// sobre el bien, todo en una transacción. La guarda de estado en el UPDATE
// protege contra una aprobación/rechazo concurrente.
func (r *TransferenciaRepository) Aprobar(ctx context.Context, t domain.Transferencia, aprobadaPor string) (domain.Transferencia, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Transferencia{}, errors.NewDBError("Falla al iniciar transacción", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctxTimeout, `
        UPDATE transferencias
        SET estado = $1, aprobada_por = $2, fecha_aprobacion = $3, updated_at = $3
        WHERE id = $4 AND estado = $5`,
		domain.TransferenciaAprobada, aprobadaPor, now, t.ID, domain.TransferenciaPendiente,
	)
	if err != nil {
		r.logger.Error("Falla al aprobar transferencia.", err)
		return domain.Transferencia{}, errors.NewDBError("Falla al aprobar la transferencia", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.Transferencia{}, errors.NewConflictError("La transferencia ya no está pendiente; fue resuelta por otra operación.")
	}

	if err := aplicarCustodia(ctxTimeout, tx, t.BienID, t.UbicacionDestinoID, t.ResponsableDestinoID, now); err != nil {
		r.logger.Error("Falla al aplicar la custodia del bien al aprobar.", err)
		return domain.Transferencia{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return domain.Transferencia{}, errors.NewDBError("Falla al comprometer la transacción", commitErr)
	}

	t.Estado = domain.TransferenciaAprobada
	t.AprobadaPor = aprobadaPor
	t.FechaAprobacion = &now
	t.UpdatedAt = now

	r.logger.Info("Transferencia aprobada y custodia aplicada.", map[string]interface{}{
		"id": t.ID, "bien_id": t.BienID, "ubicacion_destino_id": t.UbicacionDestinoID,
	})
	return t, nil
}

// Rechazar marca la transferencia como RECHAZADA sin tocar el bien.
func (r *TransferenciaRepository) Rechazar(ctx context.Context, id, aprobadaPor, observaciones string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()

	result, err := r.DB.ExecContext(ctxTimeout, `
        UPDATE transferencias
        SET estado = $1, aprobada_por = $2,
            observaciones = CASE WHEN $3 <> '' THEN $3 ELSE observaciones END,
            updated_at = $4
        WHERE id = $5 AND estado = $6`,
		domain.TransferenciaRechazada, aprobadaPor, observaciones, now, id, domain.TransferenciaPendiente,
	)
	if err != nil {
		r.logger.Error("Falla al rechazar transferencia.", err)
		return errors.NewDBError("Falla al rechazar la transferencia", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NewConflictError("La transferencia ya no está pendiente; fue resuelta por otra operación.")
	}

	r.logger.Info("Transferencia rechazada.", map[string]interface{}{"id": id})
	return nil
}

// Ejecutar reconfirma la custodia destino sobre el bien (reaplicación
// idempotente) y marca la transferencia como EJECUTADA.
func (r *TransferenciaRepository) Ejecutar(ctx context.Context, t domain.Transferencia) (domain.Transferencia, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Transferencia{}, errors.NewDBError("Falla al iniciar transacción", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctxTimeout, `
        UPDATE transferencias
        SET estado = $1, fecha_ejecucion = $2, updated_at = $2
        WHERE id = $3 AND estado = $4`,
		domain.TransferenciaEjecutada, now, t.ID, domain.TransferenciaAprobada,
	)
	if err != nil {
		r.logger.Error("Falla al ejecutar transferencia.", err)
		return domain.Transferencia{}, errors.NewDBError("Falla al ejecutar la transferencia", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.Transferencia{}, errors.NewConflictError("La transferencia no está aprobada; no puede ejecutarse.")
	}

	if err := aplicarCustodia(ctxTimeout, tx, t.BienID, t.UbicacionDestinoID, t.ResponsableDestinoID, now); err != nil {
		r.logger.Error("Falla al reconfirmar la custodia del bien al ejecutar.", err)
		return domain.Transferencia{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return domain.Transferencia{}, errors.NewDBError("Falla al comprometer la transacción", commitErr)
	}

	t.Estado = domain.TransferenciaEjecutada
	t.FechaEjecucion = &now
	t.UpdatedAt = now

	r.logger.Info("Transferencia ejecutada.", map[string]interface{}{"id": t.ID, "bien_id": t.BienID})
	return t, nil
}

// Devolver registra el retorno de una transferencia TEMPORAL: estampa
// fecha_devolucion y revierte la custodia del bien a los valores de origen.
func (r *TransferenciaRepository) Devolver(ctx context.Context, t domain.Transferencia) (domain.Transferencia, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Transferencia{}, errors.NewDBError("Falla al iniciar transacción", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctxTimeout, `
        UPDATE transferencias
        SET fecha_devolucion = $1, updated_at = $1
        WHERE id = $2 AND fecha_devolucion IS NULL`,
		now, t.ID,
	)
	if err != nil {
		r.logger.Error("Falla al registrar la devolución.", err)
		return domain.Transferencia{}, errors.NewDBError("Falla al registrar la devolución", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.Transferencia{}, errors.NewConflictError("La transferencia ya fue devuelta.")
	}

	if err := aplicarCustodia(ctxTimeout, tx, t.BienID, t.UbicacionOrigenID, t.ResponsableOrigenID, now); err != nil {
		r.logger.Error("Falla al revertir la custodia del bien en la devolución.", err)
		return domain.Transferencia{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return domain.Transferencia{}, errors.NewDBError("Falla al comprometer la transacción", commitErr)
	}

	t.FechaDevolucion = &now
	t.UpdatedAt = now

	r.logger.Info("Devolución registrada y custodia revertida.", map[string]interface{}{
		"id": t.ID, "bien_id": t.BienID, "ubicacion_origen_id": t.UbicacionOrigenID,
	})
	return t, nil
}

// Eliminar borra una transferencia PENDIENTE (cancelación del solicitante).
func (r *TransferenciaRepository) Eliminar(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`DELETE FROM transferencias WHERE id = $1 AND estado = $2`,
		id, domain.TransferenciaPendiente,
	)
	if err != nil {
		r.logger.Error("Falla al eliminar transferencia.", err)
		return errors.NewDBError("Falla al eliminar la transferencia", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NewConflictError("La transferencia ya no está pendiente; no puede cancelarse.")
	}

	r.logger.Info("Transferencia cancelada y eliminada.", map[string]interface{}{"id": id})
	return nil
}

// aplicarCustodia escribe el par ubicación/responsable sobre el bien dentro
// de la transacción del flujo.
func aplicarCustodia(ctx context.Context, tx *sql.Tx, bienID, ubicacionID, responsableID string, now time.Time) error {
	result, err := tx.ExecContext(ctx, `
        UPDATE bienes
        SET ubicacion_id = $1, responsable_id = $2, updated_at = $3
        WHERE id = $4`,
		ubicacionID, responsableID, now, bienID,
	)
	if err != nil {
		return errors.NewDBError("Falla al actualizar la custodia del bien", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Bien con ID %s no encontrado.", bienID))
	}
	return nil
}
