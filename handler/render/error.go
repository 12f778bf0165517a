package render

import (
	"net/http"

	"tally/core"
	"tally/handler/codes"
)

// ServiceError renders an engine error with its own code and the http status
// its twirp mapping implies; anything else falls back to a bad request.
func ServiceError(w http.ResponseWriter, err error) {
	if code, ok := err.(core.ErrorCode); ok {
		Error(w, codes.HTTPStatus(code), int(code), err)
		return
	}

	Error(w, http.StatusBadRequest, -1, err)
}
