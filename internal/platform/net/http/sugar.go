package http

import (
	stdhttp "net/http"

	"prosefix/internal/platform/net/http/bind"
)

// JSONHandler adapts a typed (request, payload) -> (data, error) function to a Handler.
// The payload is parsed and validated via bind.ParseJSON; results are enveloped
func JSONHandler[T any](h func(*stdhttp.Request, T) (any, error)) Handler {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		out, err := h(r, in)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		RespondOK(w, r, out)
	}
}

// JSONHandlerNoBody adapts a body-less handler to a Handler with envelope responses
func JSONHandlerNoBody(h func(*stdhttp.Request) (any, error)) Handler {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		out, err := h(r)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		RespondOK(w, r, out)
	}
}

// GetJSON mounts a pure JSON handler for GET
func GetJSON(r Router, path string, h func(*stdhttp.Request) (any, error)) {
	r.Get(path, JSONHandlerNoBody(h))
}

// PostJSON mounts a pure JSON handler for POST
func PostJSON[T any](r Router, path string, h func(*stdhttp.Request, T) (any, error)) {
	r.Post(path, JSONHandler(h))
}
