package ports

import (
	"context"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

// Notifier presenta el resultado de una evaluación al usuario.
type Notifier interface {
	// Notify muestra las filas combinadas en el orden recibido (rise probability desc).
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, run domain.EvaluationRun) error
}
