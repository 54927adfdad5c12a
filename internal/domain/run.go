package domain

import "time"

// Etapas en las que un instrumento puede quedar fuera del lote.
const (
	StageLookup   = "lookup"
	StageEvaluate = "evaluate"
	StageRise     = "rise"
)

// SkippedInstrument registra un fallo no fatal de un instrumento.
type SkippedInstrument struct {
	Instrument string `json:"instrument"`
	Stage      string `json:"stage"`
	Reason     string `json:"reason"`
}

// EvaluationRun es el resultado completo de un ciclo de evaluación.
type EvaluationRun struct {
	ID          string
	StartedAt   time.Time
	CompletedAt time.Time
	Horizon     int
	Results     []CombinedResult
	Skipped     []SkippedInstrument
}

// Top devuelve la fila con mayor rise probability, o false si no hay filas.
func (r EvaluationRun) Top() (CombinedResult, bool) {
	if len(r.Results) == 0 {
		return CombinedResult{}, false
	}
	return r.Results[0], true
}

// Recommendation es la respuesta del LLM para un símbolo.
type Recommendation struct {
	Symbol    string
	Model     string
	Reasoning string
	Content   string
	CreatedAt time.Time
}

// RecommendationInput agrupa todo lo que ve el LLM.
type RecommendationInput struct {
	Symbol   string
	Analysis CombinedResult
	News     []NewsItem
	Company  CompanyInfo
	Prices   MovingAverageSnapshot
}
