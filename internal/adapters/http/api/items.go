package api

import (
	"context"
	"net/http"

	"github.com/okian/items/internal/domain/model"
	"github.com/okian/items/pkg/logger"
)

// ItemsDependencies defines the item operations used by the handlers.
type ItemsDependencies interface {
	ListItems(ctx context.Context) ([]model.Item, error)
	CreateItem(ctx context.Context, in model.NewItem) (model.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// ItemsHandler handles the /api/items routes.
type ItemsHandler struct {
	deps   ItemsDependencies
	logger logger.Logger
}

// NewItemsHandler creates a new items handler.
func NewItemsHandler(deps ItemsDependencies) *ItemsHandler {
	return &ItemsHandler{deps: deps, logger: logger.Nop()}
}

// HandleListItems handles GET /api/items.
func (h *ItemsHandler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.ListItems(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleCreateItem handles POST /api/items.
func (h *ItemsHandler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	in, err := model.DecodeNewItem(r.Body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.deps.CreateItem(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// HandleDeleteItem handles DELETE /api/items/{id}.
func (h *ItemsHandler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteItem(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Item deleted"})
}

func (h *ItemsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed",
			logger.String("method", r.Method), logger.String("path", r.URL.Path),
			logger.Int("status", status), logger.Error(err))
	}
	writeError(w, status, err)
}
