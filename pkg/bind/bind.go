// Package bind decodes and validates HTTP request bodies.
package bind

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vitthalk15/DataDash/pkg/validate"
)

// DefaultMaxBytes caps bodies when no explicit limit is configured.
const DefaultMaxBytes int64 = 4 << 20

// ErrEmptyBody is returned for a request without a body.
var ErrEmptyBody = errors.New("request body is empty")

type limitKey struct{}

// WithLimit sets the JSON body cap for requests carrying ctx.
func WithLimit(ctx context.Context, n int64) context.Context {
	return context.WithValue(ctx, limitKey{}, n)
}

// Limit returns the cap stored by WithLimit or DefaultMaxBytes.
func Limit(ctx context.Context) int64 {
	if n, ok := ctx.Value(limitKey{}).(int64); ok && n > 0 {
		return n
	}
	return DefaultMaxBytes
}

// JSON decodes r.Body into dest, capped at Limit(r.Context()), and
// validates it. It returns the field errors when validation fails and err
// when the body is missing, malformed or too large.
func JSON(w http.ResponseWriter, r *http.Request, dest any) (map[string]string, error) {
	maxBytes := Limit(r.Context())
	if r.Body == nil || r.Body == http.NoBody {
		return nil, ErrEmptyBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
