package httpx

import "net/url"

var secretParams = []string{"apikey", "api_key", "token"}

// redact oculta las API keys de una URL antes de loguearla o envolverla en un error.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}
