package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// Recoverer turns a panicking handler into a JSON 500 and logs the stack.
// The process keeps serving other requests. It keeps the contract of chi's
// middleware.Recoverer, including re-panicking http.ErrAbortHandler, but
// answers with the API's JSON error body and logs through the request logger.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromContext(r.Context()).Error("recovered from panic",
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()))

			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, shared.MsgInternalError,
				fmt.Errorf("panic: %v", rec))
		}()

		next.ServeHTTP(w, r)
	})
}
