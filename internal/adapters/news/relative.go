package news

import (
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

// relativeDate traduce "3 hours ago", "yesterday", "2 days ago" a YYYY-MM-DD
// relativo a now. Si no es relativo, delega en domain.NormalizePubDate.
func relativeDate(s string, now time.Time) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return now.UTC().Format(time.DateOnly)
	case "yesterday":
		return now.UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	}

	fields := strings.Fields(s)
	if len(fields) == 3 && fields[2] == "ago" {
		n, err := strconv.Atoi(fields[0])
		if fields[0] == "a" || fields[0] == "an" {
			n, err = 1, nil
		}
		if err == nil {
			unit := strings.TrimSuffix(fields[1], "s")
			var d time.Duration
			switch unit {
			case "second", "minute", "min":
				d = 0
			case "hour":
				d = time.Duration(n) * time.Hour
			case "day":
				d = time.Duration(n) * 24 * time.Hour
			case "week":
				d = time.Duration(n) * 7 * 24 * time.Hour
			case "month":
				return now.UTC().AddDate(0, -n, 0).Format(time.DateOnly)
			default:
				return domain.NormalizePubDate(s)
			}
			return now.UTC().Add(-d).Format(time.DateOnly)
		}
	}
	return domain.NormalizePubDate(s)
}
