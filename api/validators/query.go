package validators

import (
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/apothex/pricing-backend/pkg/errors"
	"github.com/apothex/pricing-backend/pkg/types"
)

// ParseQueryDate reads a YYYY-MM-DD query parameter. An absent parameter
// falls back to defaultVal.
func ParseQueryDate(r *http.Request, key string, defaultVal time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return types.Midnight(defaultVal), nil
	}
	value, err := time.Parse(types.DateLayout, raw)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a YYYY-MM-DD date").
			WithDetails(map[string]any{"field": key})
	}
	return types.Midnight(value), nil
}
