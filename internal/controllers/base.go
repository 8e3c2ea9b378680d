package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/drstein77/shoppinglist/internal/compress"
	"github.com/drstein77/shoppinglist/internal/middleware"
	"github.com/drstein77/shoppinglist/internal/models"
	"github.com/drstein77/shoppinglist/internal/sqlerr"
	"github.com/drstein77/shoppinglist/internal/storage"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

const exportFileName = "shopping_list"

// Storage interface for shopping list operations
type Storage interface {
	ListItems(context.Context) ([]models.Item, error)
	GetItem(context.Context, int64) (*models.Item, error)
	CreateItem(context.Context, models.NewItem) (*models.Item, error)
	UpdateItem(context.Context, int64, models.ItemFields) (*models.Item, error)
	DeleteItem(context.Context, int64) error
	ImportItems(context.Context, io.Reader) (*models.ImportResponse, error)
	ExportItems(context.Context, io.Writer) error
	Ping(context.Context) bool
}

// Log interface for logging
type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// BaseController struct for handling requests
type BaseController struct {
	storage Storage
	log     Log

	maxArchiveSize int64
}

// NewBaseController creates a new BaseController instance
func NewBaseController(storage Storage, log Log) *BaseController {
	return &BaseController{
		storage:        storage,
		log:            log,
		maxArchiveSize: compress.MaxArchiveSize,
	}
}

// Route sets up the routes for the BaseController
func (h *BaseController) Route() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/ping", h.ping)

	r.Route("/api/v1/shopping-list", func(r chi.Router) {
		r.Get("/", h.listItems)
		r.Post("/", h.createItem)

		r.Group(func(r chi.Router) {
			r.Use(middleware.ArchiveTypeMiddleware)
			r.Get("/export", h.exportItems)
			r.Post("/import", h.importItems)
		})

		r.Get("/{id}", h.getItem)
		r.Put("/{id}", h.updateItem)
		r.Delete("/{id}", h.deleteItem)
	})

	return r
}

func (h *BaseController) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.storage.ListItems(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *BaseController) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	item, err := h.storage.GetItem(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

func (h *BaseController) createItem(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var newItem models.NewItem
	if err := json.NewDecoder(r.Body).Decode(&newItem); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	item, err := h.storage.CreateItem(r.Context(), newItem)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/shopping-list/%d", item.ID))
	h.writeJSON(w, http.StatusCreated, item)
}

func (h *BaseController) updateItem(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	fields, missing := req.fields()
	if missing != "" {
		http.Error(w, missing+" is required", http.StatusBadRequest)
		return
	}

	item, err := h.storage.UpdateItem(r.Context(), id, fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

func (h *BaseController) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.storage.DeleteItem(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BaseController) exportItems(w http.ResponseWriter, r *http.Request) {
	archiveType := middleware.ArchiveType(r.Context())

	// the archive is built in memory so a failed query still yields a clean 500
	var buf bytes.Buffer
	aw, err := compress.NewWriter(archiveType, &buf, exportFileName+".csv")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.storage.ExportItems(r.Context(), aw); err != nil {
		h.writeError(w, err)
		return
	}
	if err := aw.Close(); err != nil {
		h.writeError(w, err)
		return
	}

	contentType := "application/zip"
	if archiveType == compress.Tar {
		contentType = "application/x-tar"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", exportFileName, archiveType))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log.Error("Failed to write export", zap.Error(err))
	}
}

func (h *BaseController) importItems(w http.ResponseWriter, r *http.Request) {
	body, err := compress.NewReader(middleware.ArchiveType(r.Context()), r.Body, h.maxArchiveSize)
	if errors.Is(err, compress.ErrArchiveTooLarge) {
		h.writeError(w, err)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read archive: %v", err), http.StatusBadRequest)
		return
	}
	defer body.Close()

	resp, err := h.storage.ImportItems(r.Context(), body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *BaseController) ping(w http.ResponseWriter, r *http.Request) {
	if !h.storage.Ping(r.Context()) {
		http.Error(w, "Database is unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// updateRequest is a full replace; every field must be present, though an
// empty string is a valid value.
type updateRequest struct {
	Name      *string    `json:"name"`
	Price     *string    `json:"price"`
	DateAdded *time.Time `json:"date_added"`
	Checked   *bool      `json:"checked"`
	Category  *string    `json:"category"`
}

// fields returns the name of the first absent field, or the full replacement.
func (req updateRequest) fields() (models.ItemFields, string) {
	switch {
	case req.Name == nil:
		return models.ItemFields{}, "name"
	case req.Price == nil:
		return models.ItemFields{}, "price"
	case req.DateAdded == nil:
		return models.ItemFields{}, "date_added"
	case req.Checked == nil:
		return models.ItemFields{}, "checked"
	case req.Category == nil:
		return models.ItemFields{}, "category"
	}
	return models.ItemFields{
		Name:      *req.Name,
		Price:     *req.Price,
		DateAdded: *req.DateAdded,
		Checked:   *req.Checked,
		Category:  *req.Category,
	}, ""
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *BaseController) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *BaseController) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "Item not found", http.StatusNotFound)
	case errors.Is(err, compress.ErrArchiveTooLarge):
		http.Error(w, "Archive is too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, storage.ErrInvalidCSV):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case sqlerr.IsRejected(err):
		msg := "Item rejected by the database"
		if col := sqlerr.Column(err); col != "" {
			msg = fmt.Sprintf("%s: %s", msg, col)
		}
		http.Error(w, msg, http.StatusBadRequest)
	default:
		h.log.Error("Request failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
