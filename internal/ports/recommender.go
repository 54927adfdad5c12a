package ports

import (
	"context"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

// Recommender pide al LLM la recomendación semanal (rise/fall + buy/hold/sell).
// El texto devuelto no se parsea ni se valida.
type Recommender interface {
	Recommend(ctx context.Context, in domain.RecommendationInput) (domain.Recommendation, error)
}
