package http

import (
	"errors"
	"net/http"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/pkg/httpx"
	"github.com/seulahhh/Fintech-project/pkg/slogx"
)

// errorBody is the wire shape for every error response.
type errorBody struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// writeError maps a domain error onto its HTTP status and serialises the
// stable code plus detail. Anything that is not a domain error is an
// internal failure and must not leak its message to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		httpx.WriteJSON(w, derr.HTTPStatus(), errorBody{Code: derr.Code, Detail: derr.Detail})
		return
	}

	slogx.FromContext(r.Context()).Error("unclassified handler error", "err", err)
	httpx.WriteJSON(w, http.StatusInternalServerError, errorBody{
		Code:   domain.ErrIoOperationFailed.Code,
		Detail: domain.ErrIoOperationFailed.Detail,
	})
}

// writeBadRequest reports a malformed request body.
func writeBadRequest(w http.ResponseWriter, detail string) {
	httpx.WriteJSON(w, http.StatusBadRequest, errorBody{Code: "REQ-001", Detail: detail})
}
