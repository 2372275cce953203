package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
)

// ConsultantIDHeader заголовок, который выставляет шлюз авторизации
const ConsultantIDHeader = "X-Consultant-ID"

const msgMissingConsultantID = "X-Consultant-ID header is required"

type ctxKey struct{}

// Auth требует заголовок X-Consultant-ID и кладет его значение в контекст
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		consultantID := strings.TrimSpace(r.Header.Get(ConsultantIDHeader))
		if consultantID == "" {
			handlers.RespondUnauthorized(w, msgMissingConsultantID)
			return
		}

		ctx := WithConsultantID(r.Context(), consultantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithConsultantID кладет ID консультанта в контекст
func WithConsultantID(ctx context.Context, consultantID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, consultantID)
}

// GetConsultantID достает ID консультанта, выставленный Auth
func GetConsultantID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
