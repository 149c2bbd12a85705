package middleware

import (
	stdhttp "net/http"
	"runtime/debug"

	perr "swifthub/internal/platform/errors"
	"swifthub/internal/platform/logger"
	phttp "swifthub/internal/platform/net/http"
)

// RecoverJSON converts panics into a GitHub-shaped 500 and logs the stack with the request id
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == stdhttp.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			phttp.RespondError(w, r, perr.Internalf("Server Error"))
		}()
		next.ServeHTTP(w, r)
	})
}
