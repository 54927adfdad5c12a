package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultHorizon es el desplazamiento en filas entre predicción y realidad (una semana).
const DefaultHorizon = 7

// Config es la configuración completa de forecastbot.
type Config struct {
	Symbol     string           `yaml:"symbol"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Market     MarketConfig     `yaml:"market"`
	News       NewsConfig       `yaml:"news"`
	LLM        LLMConfig        `yaml:"llm"`
	Report     ReportConfig     `yaml:"report"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
	Trace      TraceConfig      `yaml:"trace"`
}

// EvaluationConfig controla la evaluación actual vs. predicho.
type EvaluationConfig struct {
	Input       string   `yaml:"input"`       // CSV ancho; relativo a report.dir si no es absoluto
	DateColumn  string   `yaml:"date_column"` // cabecera de fecha (default 날짜)
	Instruments []string `yaml:"instruments"` // vacío = todos los del CSV
	Horizon     *int     `yaml:"horizon"`     // filas entre predicción y realidad; 0 es válido
	Workers     int      `yaml:"workers"`
}

// MarketConfig es el proveedor de precios y fundamentales (Twelve Data).
type MarketConfig struct {
	BaseURL      string  `yaml:"base_url"`
	APIKey       string  `yaml:"-"` // solo desde TWELVE_API_KEY
	LookbackDays int     `yaml:"lookback_days"`
	RatePerSec   float64 `yaml:"rate_per_sec"`
	MaxRetries   uint64  `yaml:"max_retries"`
	TimeoutSec   int     `yaml:"timeout_seconds"`
}

// NewsConfig controla el scraper de titulares.
type NewsConfig struct {
	URLTemplate string        `yaml:"url_template"` // debe contener {symbol}
	Limit       int           `yaml:"limit"`
	RatePerSec  float64       `yaml:"rate_per_sec"`
	Selectors   NewsSelectors `yaml:"selectors"`
}

// NewsSelectors son los selectores CSS de la página de titulares.
type NewsSelectors struct {
	Item       string `yaml:"item"`
	Title      string `yaml:"title"`
	Link       string `yaml:"link"`
	Summary    string `yaml:"summary"`
	Publishing string `yaml:"publishing"` // "Fuente • hace 3 horas"
	Time       string `yaml:"time"`       // <time datetime="…">, si existe
}

// LLMConfig es el endpoint OpenAI-compatible del recomendador.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"-"` // solo desde DEEPSEEK_API_KEY
	TimeoutSec  int     `yaml:"timeout_seconds"`
	Temperature float32 `yaml:"temperature"`
}

// ReportConfig es el directorio de artefactos.
type ReportConfig struct {
	Dir string `yaml:"dir"`
}

// StorageConfig controla dónde se persiste el histórico de corridas.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o "" para desactivar
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// TraceConfig activa el exporter de OpenTelemetry.
type TraceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Pretty  bool   `yaml:"pretty"`
	File    string `yaml:"file"` // vacío = stdout
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del entorno sobreescriben los del YAML. Con path vacío usa
// solo defaults + entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate comprueba los valores que no tienen un default razonable.
func (c *Config) Validate() error {
	if *c.Evaluation.Horizon < 0 {
		return fmt.Errorf("evaluation.horizon must be >= 0, got %d", *c.Evaluation.Horizon)
	}
	if !strings.Contains(c.News.URLTemplate, "{symbol}") {
		return fmt.Errorf("news.url_template must contain {symbol}")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Horizon devuelve el horizonte efectivo.
func (c *Config) Horizon() int {
	return *c.Evaluation.Horizon
}

// InputPath devuelve la ruta del CSV de predicciones.
func (c *Config) InputPath() string {
	if filepath.IsAbs(c.Evaluation.Input) {
		return c.Evaluation.Input
	}
	return filepath.Join(c.Report.Dir, c.Evaluation.Input)
}

// MarketTimeout devuelve el timeout HTTP del proveedor de mercado.
func (c *Config) MarketTimeout() time.Duration {
	return time.Duration(c.Market.TimeoutSec) * time.Second
}

// LLMTimeout devuelve el timeout de la llamada al LLM.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSec) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("TWELVE_API_KEY"); v != "" {
		cfg.Market.APIKey = v
	}
	if v := os.Getenv("DEEPSEEK_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	cfg.Symbol = strings.ToUpper(strings.TrimSpace(cfg.Symbol))
	if cfg.Symbol == "" {
		cfg.Symbol = "GOOGL"
	}

	if cfg.Evaluation.Input == "" {
		cfg.Evaluation.Input = "predicted_stock.csv"
	}
	if cfg.Evaluation.Horizon == nil {
		h := DefaultHorizon
		cfg.Evaluation.Horizon = &h
	}
	if cfg.Evaluation.Workers <= 0 {
		cfg.Evaluation.Workers = runtime.NumCPU() * 2
	}

	if cfg.Market.BaseURL == "" {
		cfg.Market.BaseURL = "https://api.twelvedata.com"
	}
	if cfg.Market.LookbackDays <= 0 {
		cfg.Market.LookbackDays = 60
	}
	if cfg.Market.RatePerSec <= 0 {
		cfg.Market.RatePerSec = 0.12 // plan gratuito: 8 req/min
	}
	if cfg.Market.MaxRetries == 0 {
		cfg.Market.MaxRetries = 3
	}
	if cfg.Market.TimeoutSec <= 0 {
		cfg.Market.TimeoutSec = 15
	}

	if cfg.News.URLTemplate == "" {
		cfg.News.URLTemplate = "https://finance.yahoo.com/quote/{symbol}/news/"
	}
	if cfg.News.Limit <= 0 {
		cfg.News.Limit = 20
	}
	if cfg.News.RatePerSec <= 0 {
		cfg.News.RatePerSec = 1
	}
	if cfg.News.Selectors.Item == "" {
		cfg.News.Selectors = NewsSelectors{
			Item:       "li.stream-item",
			Title:      "h3",
			Link:       "a",
			Summary:    "p",
			Publishing: "div.publishing",
			Time:       "time",
		}
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.deepseek.com"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "deepseek-reasoner"
	}
	if cfg.LLM.TimeoutSec <= 0 {
		cfg.LLM.TimeoutSec = 300 // deepseek-reasoner puede tardar minutos
	}

	if cfg.Report.Dir == "" {
		cfg.Report.Dir = "report"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
