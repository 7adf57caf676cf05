package http

import (
	"net/http"
	"time"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/service"
	"github.com/seulahhh/Fintech-project/pkg/httpx"
)

// AccountsHandler covers the account CRUD surface. All routes sit behind
// AuthnMiddleware; the identity comes from the verified access token, never
// from the request body.
type AccountsHandler struct {
	Accounts *service.AccountService
}

type accountResponse struct {
	ID        string     `json:"id"`
	Number    string     `json:"number"`
	Balance   int64      `json:"balance"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

func toAccountResponse(a domain.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Number:    a.Number,
		Balance:   a.Balance,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		DeletedAt: a.DeletedAt,
	}
}

// HandleCreate handles POST /accounts.
func (h *AccountsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	email, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrInvalidToken)
		return
	}

	account, err := h.Accounts.Create(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toAccountResponse(account))
}

// HandleList handles GET /accounts.
func (h *AccountsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	email, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrInvalidToken)
		return
	}

	accounts, err := h.Accounts.List(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /accounts/{id}.
func (h *AccountsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	email, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrInvalidToken)
		return
	}

	account, err := h.Accounts.Get(r.Context(), email, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

// HandleDelete handles DELETE /accounts/{id}. The response carries the
// disabled account record.
func (h *AccountsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	email, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrInvalidToken)
		return
	}

	account, err := h.Accounts.Delete(r.Context(), email, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(account))
}
