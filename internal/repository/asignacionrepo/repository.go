package asignacionrepo

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

// AsignacionRepository implementa el acceso a datos del flujo de asignación.
type AsignacionRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewAsignacionRepository crea y retorna una instancia del repositorio de asignaciones.
func NewAsignacionRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *AsignacionRepository {
	return &AsignacionRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Crear persiste la asignación y aplica la custodia sobre el bien en una
// única transacción: o ambas escrituras comprometen o ninguna. La restricción
// única sobre bien_id convierte la carrera de creación concurrente en una
// violación que acá se traduce a ConflictError.
func (r *AsignacionRepository) Crear(ctx context.Context, a domain.Asignacion) (domain.Asignacion, error) {
	r.logger.Debug("Iniciando creación de asignación en el repositorio.", map[string]interface{}{"bien_id": a.BienID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.FechaAsignacion = now
	a.CreatedAt = now

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falla al iniciar transacción de asignación.", err)
		return domain.Asignacion{}, errors.NewDBError("Falla al iniciar transacción", err)
	}
	defer tx.Rollback()

	queryInsert := `
        INSERT INTO asignaciones (id, bien_id, ubicacion_destino_id, responsable_destino_id,
            motivo, observaciones, emitida_por, fecha_asignacion, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.ExecContext(ctxTimeout, queryInsert,
		a.ID, a.BienID, a.UbicacionDestinoID, a.ResponsableDestinoID,
		a.Motivo, a.Observaciones, a.EmitidaPor, a.FechaAsignacion, a.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Warn("Asignación duplicada detectada por restricción única.", map[string]interface{}{"bien_id": a.BienID})
			return domain.Asignacion{}, errors.NewConflictError("El bien ya posee una asignación registrada; use una transferencia.")
		}
		r.logger.Error("Falla al insertar asignación en el DB.", err)
		return domain.Asignacion{}, errors.NewDBError("Falla al crear la asignación", err)
	}

	queryBien := `
        UPDATE bienes
        SET ubicacion_id = $1, responsable_id = $2, updated_at = $3
        WHERE id = $4`

	result, err := tx.ExecContext(ctxTimeout, queryBien,
		a.UbicacionDestinoID, a.ResponsableDestinoID, now, a.BienID)
	if err != nil {
		r.logger.Error("Falla al aplicar la custodia del bien en la asignación.", err)
		return domain.Asignacion{}, errors.NewDBError("Falla al actualizar el bien asignado", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Asignacion{}, errors.NewDBError("Falla al verificar filas afectadas", err)
	}
	if rowsAffected == 0 {
		// El bien desapareció entre el chequeo del servicio y la escritura.
		return domain.Asignacion{}, errors.NewNotFoundError(fmt.Sprintf("Bien con ID %s no encontrado.", a.BienID))
	}

	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falla al comprometer la transacción de asignación.", commitErr)
		return domain.Asignacion{}, errors.NewDBError("Falla al comprometer la transacción", commitErr)
	}

	r.logger.Info("Asignación creada con éxito.", map[string]interface{}{
		"id": a.ID, "bien_id": a.BienID, "ubicacion_destino_id": a.UbicacionDestinoID,
	})
	return a, nil
}

// BuscarPorBien busca la asignación de un bien, si existe.
func (r *AsignacionRepository) BuscarPorBien(ctx context.Context, bienID string) (domain.Asignacion, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, bien_id, ubicacion_destino_id, responsable_destino_id,
            motivo, observaciones, emitida_por, fecha_asignacion, created_at
        FROM asignaciones
        WHERE bien_id = $1`

	var a domain.Asignacion
	err := r.DB.QueryRowContext(ctxTimeout, query, bienID).Scan(
		&a.ID, &a.BienID, &a.UbicacionDestinoID, &a.ResponsableDestinoID,
		&a.Motivo, &a.Observaciones, &a.EmitidaPor, &a.FechaAsignacion, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Asignacion{}, errors.NewNotFoundError(fmt.Sprintf("El bien %s no posee asignación.", bienID))
	}
	if err != nil {
		r.logger.Error("Falla al buscar asignación por bien.", err)
		return domain.Asignacion{}, errors.NewDBError("Falla al buscar la asignación", err)
	}
	return a, nil
}

// BienesPendientes lista los bienes ubicados en el almacén que aún no tienen
// asignación; alimenta la lista de trabajo del operador.
func (r *AsignacionRepository) BienesPendientes(ctx context.Context, almacenID string) ([]domain.Bien, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT b.id, b.codigo_interno, b.codigo_barras, b.descripcion, b.marca, b.modelo, b.serial,
            b.fecha_adquisicion, b.estado, b.condicion, b.ubicacion_id, b.responsable_id,
            b.categoria_id, b.creado_por, b.created_at, b.updated_at
        FROM bienes b
        LEFT JOIN asignaciones a ON a.bien_id = b.id
        WHERE b.ubicacion_id = $1 AND a.id IS NULL
        ORDER BY b.codigo_interno`

	rows, err := r.DB.QueryContext(ctxTimeout, query, almacenID)
	if err != nil {
		r.logger.Error("Falla al listar bienes pendientes de asignación.", err)
		return nil, errors.NewDBError("Falla al listar bienes pendientes", err)
	}
	defer rows.Close()

	var bienes []domain.Bien
	for rows.Next() {
		var b domain.Bien
		var fechaAdq sql.NullTime
		err := rows.Scan(
			&b.ID, &b.CodigoInterno, &b.CodigoBarras, &b.Descripcion, &b.Marca, &b.Modelo, &b.Serial,
			&fechaAdq, &b.Estado, &b.Condicion, &b.UbicacionID, &b.ResponsableID,
			&b.CategoriaID, &b.CreadoPor, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, errors.NewDBError("Falla al mapear bienes pendientes", err)
		}
		if fechaAdq.Valid {
			b.FechaAdquisicion = &fechaAdq.Time
		}
		bienes = append(bienes, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Error tras la iteración de bienes pendientes", err)
	}

	r.logger.Debug("Bienes pendientes de asignación listados.", map[string]interface{}{"total": len(bienes)})
	return bienes, nil
}
