package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/harrylevesque/schoolportal/internal/auth"
	"github.com/harrylevesque/schoolportal/internal/courses"
	"github.com/harrylevesque/schoolportal/internal/files"
	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/users"
)

// Handler holds the dependencies shared by every route.
type Handler struct {
	store     files.RecordStore
	courses   *courses.Registry
	users     *users.Directory
	validator auth.Validator
	tokens    *auth.TokenIssuer
	assetsDir string
	env       string
	logger    *slog.Logger

	contactMu sync.Mutex
}

func newHandler(d Deps) *Handler {
	dir := users.NewDirectory(d.Store, d.Logger)
	return &Handler{
		store:     d.Store,
		courses:   courses.NewRegistry(d.Store, d.Logger),
		users:     dir,
		validator: auth.Validator{Users: dir, Matcher: auth.BcryptMatcher{}},
		tokens:    d.Tokens,
		assetsDir: d.AssetsDir,
		env:       d.Env,
		logger:    d.Logger,
	}
}

// getDocument serves a whole collection verbatim. Absent or unreadable
// documents answer 404 with msg.
func (h *Handler) getDocument(c files.Collection, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc json.RawMessage
		if err := h.store.Read(c, &doc); err != nil {
			if !errors.Is(err, files.ErrNotFound) {
				h.logger.Warn("document unreadable", "collection", string(c), "error", err)
			}
			writeMessage(w, http.StatusNotFound, msg)
			return
		}
		writeData(w, doc)
	}
}

func (h *Handler) listCourses(w http.ResponseWriter, r *http.Request) {
	list, err := h.courses.List()
	if err != nil {
		writeError(w, err, "Erro ao carregar cursos")
		return
	}
	writeData(w, models.CourseCatalog{Courses: list})
}

func (h *Handler) createCourse(w http.ResponseWriter, r *http.Request) {
	var p models.CoursePatch
	if err := decodeJSON(r, &p); err != nil {
		writeMessage(w, http.StatusBadRequest, "Dados do curso inválidos")
		return
	}
	c, err := h.courses.Create(p)
	if err != nil {
		writeError(w, err, "Erro ao criar curso")
		return
	}
	writeData(w, c)
}

func (h *Handler) updateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := models.ParseCourseID(mux.Vars(r)["id"])
	var p models.CoursePatch
	if !ok || decodeJSON(r, &p) != nil {
		writeMessage(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	c, err := h.courses.Update(id, p)
	if err != nil {
		writeError(w, err, "Erro ao atualizar curso")
		return
	}
	writeData(w, c)
}

func (h *Handler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := models.ParseCourseID(mux.Vars(r)["id"])
	if !ok {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	c, err := h.courses.Delete(id)
	if err != nil {
		writeError(w, err, "Erro ao remover curso")
		return
	}
	writeData(w, c)
}

// runtimeConfig answers /api/config without an envelope.
func (h *Handler) runtimeConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"environment": h.env})
}
