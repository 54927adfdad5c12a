package twelvedata

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alejandrodnm/forecastbot/internal/platform/httpx"
)

const (
	defaultBase = "https://api.twelvedata.com"

	// Plan básico: 8 req/min. Dejamos margen.
	defaultRatePerSec = 0.12
)

// Client es el cliente de Twelve Data (series diarias + fundamentales).
// Implementa ports.PriceProvider y ports.CompanyProvider.
type Client struct {
	http   *httpx.Client
	base   string
	apiKey string
}

// NewClient crea un Client. Si base está vacío usa la API de producción;
// opts.RatePerSec == 0 aplica el límite del plan básico.
func NewClient(base, apiKey string, opts httpx.Options) *Client {
	if base == "" {
		base = defaultBase
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = defaultRatePerSec
	}
	return &Client{
		http:   httpx.New(opts),
		base:   base,
		apiKey: apiKey,
	}
}

// get hace GET {base}{path}?params&apikey=… y decodifica en out.
// Twelve Data puede responder 200 con {"status":"error"}: se comprueba aquí.
func (c *Client) get(ctx context.Context, path string, params url.Values, out apiResponse) error {
	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}
	u := fmt.Sprintf("%s%s?%s", c.base, path, params.Encode())

	if err := c.http.GetJSON(ctx, u, out); err != nil {
		return err
	}
	if e := out.apiError(); e != nil {
		return e
	}
	return nil
}
