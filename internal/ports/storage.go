package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

// Storage persiste el resultado de cada ciclo de evaluación.
type Storage interface {
	// SaveRun persiste la corrida completa (filas combinadas + instrumentos saltados).
	SaveRun(ctx context.Context, run domain.EvaluationRun) error

	// GetHistory devuelve las corridas iniciadas en el rango de tiempo dado,
	// más recientes primero.
	GetHistory(ctx context.Context, from, to time.Time) ([]domain.EvaluationRun, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
