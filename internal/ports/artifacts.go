package ports

import "github.com/alejandrodnm/forecastbot/internal/domain"

// Artifacts lee y escribe los ficheros intercambiados entre pasos del pipeline.
// Cada paso puede correr por separado: el siguiente lee lo que dejó el anterior.
type Artifacts interface {
	WriteAnalysis(symbol string, results []domain.CombinedResult) (string, error)
	ReadAnalysis(symbol string) ([]domain.CombinedResult, error)

	WriteMovingAverage(snap domain.MovingAverageSnapshot) (string, error)
	ReadMovingAverage(symbol string) (domain.MovingAverageSnapshot, error)

	WriteCompanyInfo(info domain.CompanyInfo) (string, error)
	ReadCompanyInfo(symbol string) (domain.CompanyInfo, error)

	WriteNews(symbol string, items []domain.NewsItem) (string, error)
	ReadNews(symbol string) ([]domain.NewsItem, error)

	WriteRecommendation(rec domain.Recommendation) (string, error)
}
