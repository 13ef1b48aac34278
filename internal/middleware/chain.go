package middleware

import "net/http"

// Chain wraps h so that middlewares run in the order given.
//
//	handler := Chain(mux,
//	    RequestID,      // runs first
//	    RequestLogging, // runs second
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// ChainFunc is Chain for per-route HandlerFunc middleware such as
// RequireAuth and rate limits.
func ChainFunc(h http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
