// Package courses manages the server course catalog.
package courses

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/harrylevesque/schoolportal/internal/files"
	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

const (
	msgListMissing  = "Lista de cursos não encontrada"
	msgInvalidData  = "Dados do curso inválidos"
	msgNotFound     = "Curso não encontrado"
	msgSaveFailed   = "Falha ao salvar curso"
	msgRemoveFailed = "Falha ao remover curso"
)

// Registry implements create/read/update/delete over the "courses" collection.
type Registry struct {
	store  files.RecordStore
	logger *slog.Logger
	now    func() time.Time

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

func NewRegistry(store files.RecordStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &Registry{store: store, logger: logger, now: time.Now}
}

// List returns every course. A missing collection is a not-found error; an
// unreadable one yields an empty list.
func (r *Registry) List() ([]models.Course, error) {
	var catalog models.CourseCatalog
	err := r.store.Read(files.Courses, &catalog)
	if errors.Is(err, files.ErrNotFound) {
		return nil, utils.Wrap(utils.KindNotFound, msgListMissing, err)
	}
	if err != nil {
		r.logger.Warn("course catalog unreadable, serving empty list", "error", err)
		return []models.Course{}, nil
	}
	if catalog.Courses == nil {
		catalog.Courses = []models.Course{}
	}
	return catalog.Courses, nil
}

// load reads the catalog for mutation; absent or unreadable means empty.
func (r *Registry) load() []models.Course {
	var catalog models.CourseCatalog
	if err := r.store.Read(files.Courses, &catalog); err != nil {
		if !errors.Is(err, files.ErrNotFound) {
			r.logger.Warn("course catalog unreadable, starting from empty", "error", err)
		}
		return []models.Course{}
	}
	return catalog.Courses
}

func (r *Registry) save(courses []models.Course, msg string) error {
	if err := r.store.Write(files.Courses, models.CourseCatalog{Courses: courses}); err != nil {
		r.logger.Error("persisting course catalog", "error", err)
		return utils.Wrap(utils.KindPersistence, msg, err)
	}
	return nil
}

// Create appends a course with id = max(existing ids)+1, or 1 when empty.
func (r *Registry) Create(p models.CoursePatch) (models.Course, error) {
	if !p.HasName() {
		return models.Course{}, utils.New(utils.KindValidation, msgInvalidData)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	courses := r.load()
	var maxID models.CourseID
	for _, c := range courses {
		if c.ID > maxID {
			maxID = c.ID
		}
	}

	created := r.now().UTC()
	course := models.Course{ID: maxID + 1, CreatedAt: &created}.Apply(p)
	courses = append(courses, course)
	if err := r.save(courses, msgSaveFailed); err != nil {
		return models.Course{}, err
	}
	r.logger.Info("course created", "id", int(course.ID), "name", course.Name)
	return course, nil
}

// Update merges p into the course with the given id. The id never changes.
func (r *Registry) Update(id models.CourseID, p models.CoursePatch) (models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	courses := r.load()
	for i, c := range courses {
		if c.ID != id {
			continue
		}
		courses[i] = c.Apply(p)
		if err := r.save(courses, msgSaveFailed); err != nil {
			return models.Course{}, err
		}
		r.logger.Info("course updated", "id", int(id))
		return courses[i], nil
	}
	return models.Course{}, utils.New(utils.KindNotFound, msgNotFound)
}

// Delete removes the course with the given id and returns it.
func (r *Registry) Delete(id models.CourseID) (models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	courses := r.load()
	for i, c := range courses {
		if c.ID != id {
			continue
		}
		rest := append(courses[:i:i], courses[i+1:]...)
		if err := r.save(rest, msgRemoveFailed); err != nil {
			return models.Course{}, err
		}
		r.logger.Info("course deleted", "id", int(id))
		return c, nil
	}
	return models.Course{}, utils.New(utils.KindNotFound, msgNotFound)
}
