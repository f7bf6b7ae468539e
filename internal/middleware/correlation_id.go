package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/correlation"
)

func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(correlation.Header)
		if cid == "" {
			cid = uuid.NewString()
		}

		// echo back so the kiosk can report it
		w.Header().Set(correlation.Header, cid)

		next.ServeHTTP(w, r.WithContext(correlation.WithID(r.Context(), cid)))
	})
}
