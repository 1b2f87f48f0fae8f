package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/service/subscription"
)

// Handlers holds the dependencies for the subscription endpoints.
type Handlers struct {
	svc *subscription.Service
	db  *sql.DB
}

// NewHandlers creates the endpoint handlers. db is used only by the health
// check and may be nil in tests.
func NewHandlers(svc *subscription.Service, db *sql.DB) *Handlers {
	return &Handlers{svc: svc, db: db}
}

// CreateSubscription handles POST /subscriptions with form-encoded name and
// email fields.
func (h *Handlers) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "malformed form body")
		return
	}

	err := h.svc.Subscribe(r.Context(), subscription.SubscribeInput{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httputil.OK(w)
}

// ConfirmSubscription handles GET /subscriptions/confirm with the token in
// the subscription_token query parameter.
func (h *Handlers) ConfirmSubscription(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("subscription_token")
	if token == "" {
		httputil.BadRequest(w, "subscription_token is required")
		return
	}

	if err := h.svc.Confirm(r.Context(), token); err != nil {
		h.respondError(w, err)
		return
	}
	httputil.OK(w)
}

// respondError maps the service error taxonomy onto status codes. Anything
// unclassified is treated as unexpected.
func (h *Handlers) respondError(w http.ResponseWriter, err error) {
	var svcErr *subscription.Error
	if errors.As(err, &svcErr) {
		switch svcErr.Kind {
		case subscription.KindValidation:
			httputil.BadRequest(w, svcErr.Error())
			return
		case subscription.KindUnauthorized:
			httputil.Unauthorized(w)
			return
		}
	}
	httputil.InternalError(w, err)
}
