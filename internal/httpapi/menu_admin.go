package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pawonsalam/restosuite/internal/catalog"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pkg/errors"
)

func (s *MenuServer) requireAdminMode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enabled, err := s.AdminMode.Enabled(r.Context())
		if err != nil {
			respondServerError(w, r, err, msgServerError)
			return
		}
		if !enabled {
			respondError(w, http.StatusForbidden, msgAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type adminModeRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *MenuServer) handleAdminMode(w http.ResponseWriter, r *http.Request) {
	var req adminModeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	var err error
	if req.Enabled {
		err = s.AdminMode.Enable(r.Context())
	} else {
		err = s.AdminMode.Disable(r.Context())
	}
	if err != nil {
		respondServerError(w, r, err, msgServerError)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{AdminMode: req.Enabled})
}

type categoryRequest struct {
	Name string `json:"name"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	Message    string   `json:"message"`
}

func (s *MenuServer) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	categories, err := s.Catalog.AddCategory(r.Context(), req.Name)
	switch {
	case errors.Is(err, catalog.ErrEmptyCategory):
		respondError(w, http.StatusBadRequest, msgCategoryEmpty)
	case errors.Is(err, catalog.ErrDuplicateCategory):
		respondError(w, http.StatusConflict, msgCategoryExists)
	case err != nil:
		respondServerError(w, r, err, msgServerError)
	default:
		respondJSON(w, http.StatusCreated, categoriesResponse{
			Categories: categories,
			Message:    "Kategori \"" + categories[len(categories)-1] + "\" berhasil ditambahkan!",
		})
	}
}

type draftRequest struct {
	Category string `json:"category"`
}

func (s *MenuServer) handleDraftItem(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, msgBadRequest)
			return
		}
	}
	respondJSON(w, http.StatusCreated, s.Catalog.NewDraftItem(req.Category))
}

type commitRequest struct {
	Items []models.MenuItem `json:"items"`
}

type commitResponse struct {
	Items   []models.MenuItem `json:"items"`
	Message string            `json:"message"`
}

// handleCommitMenu takes its save version before reading the body, so a
// slow upload cannot overwrite a save that started after it.
func (s *MenuServer) handleCommitMenu(w http.ResponseWriter, r *http.Request) {
	version := s.Catalog.BeginSave()

	var req commitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	items, err := s.Catalog.Commit(r.Context(), version, req.Items)
	switch {
	case errors.Is(err, catalog.ErrSuperseded):
		respondError(w, http.StatusConflict, msgSaveSuperseded)
	case errors.Is(err, catalog.ErrInvalidImage):
		respondError(w, http.StatusBadRequest, msgSaveInvalidImage)
	case err != nil:
		respondServerError(w, r, err, msgSaveFailed)
	default:
		s.Metrics.Event(models.EventMenuCommitted)
		respondJSON(w, http.StatusOK, commitResponse{Items: items, Message: msgSaveSuccess})
	}
}

type previewRequest struct {
	Items []models.MenuItem    `json:"items"`
	Patch models.MenuItemPatch `json:"patch"`
}

// handlePreviewItem applies an edit to the posted draft list without
// touching the stored catalog.
func (s *MenuServer) handlePreviewItem(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	id := mux.Vars(r)["id"]
	for i := range req.Items {
		if req.Items[i].ID == id {
			req.Items[i] = req.Patch.Apply(req.Items[i])
			respondJSON(w, http.StatusOK, menuResponse{Items: req.Items})
			return
		}
	}
	respondError(w, http.StatusNotFound, msgMenuNotFound)
}

func (s *MenuServer) handleSetHeaderImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgNoImage)
		return
	}
	url, err := s.Catalog.SetHeaderImage(r.Context(), req.Image)
	switch {
	case errors.Is(err, catalog.ErrInvalidImage):
		respondError(w, http.StatusBadRequest, msgHeaderInvalid)
	case err != nil:
		respondServerError(w, r, err, msgHeaderFailed)
	default:
		respondJSON(w, http.StatusOK, urlResponse{URL: url, Message: msgHeaderSaved})
	}
}

func (s *MenuServer) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.Catalog.Reset(r.Context()); err != nil {
		respondServerError(w, r, err, msgServerError)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: msgResetDone})
}
