package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

// UserPrompt es la petición fija del turno de usuario.
const UserPrompt = "Provide a one-week prediction and recommendation."

const metricGlossary = `- MAE (Mean Absolute Error): Average absolute error between actual and predicted
  (lower is better, same unit as original data)
- MSE (Mean Squared Error): Average of squared errors
  (lower is better)
- RMSE (Root Mean Squared Error): Square root of MSE
  (lower is better, often used with MAE)
- MAPE (Mean Absolute Percentage Error): Error as a percentage of the actual values
  (lower is better)
- Accuracy (%): Computed as 100 - MAPE, serving as a simple accuracy measure
- Rise_probability (%): the percentage change of the predicted future price relative
  to the last actual price, i.e. the predicted price increase rate.`

// SystemPrompt arma el prompt de sistema con la fila de análisis, las noticias,
// los fundamentales y las medias móviles.
func SystemPrompt(in domain.RecommendationInput) (string, error) {
	news, err := json.MarshalIndent(in.News, "", "    ")
	if err != nil {
		return "", fmt.Errorf("llm.SystemPrompt: news: %w", err)
	}
	company, err := json.MarshalIndent(in.Company, "", "    ")
	if err != nil {
		return "", fmt.Errorf("llm.SystemPrompt: company: %w", err)
	}
	prices, err := json.MarshalIndent(in.Prices, "", "    ")
	if err != nil {
		return "", fmt.Errorf("llm.SystemPrompt: prices: %w", err)
	}

	a := in.Analysis
	var sb strings.Builder
	sb.WriteString("[Role]\n")
	sb.WriteString("You are a seasoned Wall Street analyst with 20 years of experience, specializing in ultra-short-term trading decisions.\n\n")

	sb.WriteString("[Stock Analysis]\n")
	sb.WriteString(metricGlossary)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Stock: %s\n", in.Symbol)
	fmt.Fprintf(&sb, "Last Actual Price: %s\n", num(a.LastActual))
	fmt.Fprintf(&sb, "Predicted Future Price: %s\n", num(a.PredictedFuture))
	fmt.Fprintf(&sb, "Rise Probability (%%): %s%%\n", num(a.RiseProbability))
	fmt.Fprintf(&sb, "Accuracy (%%): %s%%\n", num(a.Accuracy))
	fmt.Fprintf(&sb, "Technical Indicators: MAE = %s, RMSE = %s, MAPE = %s%%\n", num(a.MAE), num(a.RMSE), num(a.MAPE))
	sb.WriteString("Note: These predictions are derived from a deep learning model using a Transformer architecture that predicts stock prices one week into the future. Consider the Transformer architecture prediction as one input among many for your analysis.\n\n")

	fmt.Fprintf(&sb, "[Recent Stock-Related News (Top %d)]\n%s\n\n", len(in.News), news)
	fmt.Fprintf(&sb, "[Company Information]\n%s\n\n", company)
	fmt.Fprintf(&sb, "[Stock Price Data]\n%s\n\n", prices)

	sb.WriteString("[Task]\n")
	sb.WriteString("Analyze the provided stock data and predict whether the stock will rise or fall in price over the next week. Provide a brief justification for your prediction, and recommend whether to buy, hold, or sell the stock.\n")
	return sb.String(), nil
}

func num(v null.Float) string {
	if !v.Valid {
		return "None"
	}
	return fmt.Sprintf("%g", v.Float64)
}
