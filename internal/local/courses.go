package local

import (
	"log/slog"
	"sync"
	"time"

	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

// CourseMirror keeps the course list under KeyCourses.
type CourseMirror struct {
	s      Storage
	logger *slog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

func NewCourseMirror(s Storage, logger *slog.Logger) *CourseMirror {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &CourseMirror{s: s, logger: logger, now: time.Now}
}

func defaultLocalCourses(now time.Time) []models.LocalCourse {
	return []models.LocalCourse{
		{ID: "excel_001", Name: "Excel", Description: "Aprenda Excel do básico ao avançado", Duration: "40h", Level: "Iniciante a Avançado", Category: "Office", Emoji: "📊", CreatedAt: now},
		{ID: "python_001", Name: "Python", Description: "Programação em Python", Duration: "60h", Level: "Iniciante", Category: "Programação", Emoji: "💻", CreatedAt: now},
		{ID: "arduino_001", Name: "Arduino", Description: "Introdução à programação com Arduino", Duration: "40h", Level: "Iniciante", Category: "Eletrônica", Emoji: "⚡", CreatedAt: now},
		{ID: "games_001", Name: "Criação de jogos", Description: "Aprenda a criar seus próprios jogos", Duration: "80h", Level: "Intermediário", Category: "Game Development", Emoji: "🎮", CreatedAt: now},
		{ID: "ingles_001", Name: "Inglês", Description: "Inglês técnico para programadores", Duration: "100h", Level: "Todos os níveis", Category: "Idiomas", Emoji: "🌎", CreatedAt: now},
		{ID: "espanhol_001", Name: "Espanhol", Description: "Espanhol para tecnologia", Duration: "100h", Level: "Todos os níveis", Category: "Idiomas", Emoji: "🌎", CreatedAt: now},
	}
}

func (m *CourseMirror) load() []models.LocalCourse {
	courses := getAll[models.LocalCourse](m.s, KeyCourses, m.logger)
	if len(courses) > 0 {
		return courses
	}
	courses = defaultLocalCourses(m.now().UTC())
	if err := saveAll(m.s, KeyCourses, courses); err != nil {
		m.logger.Warn("seeding local courses", "error", err)
	}
	return courses
}

// Stored returns the raw list without seeding.
func (m *CourseMirror) Stored() []models.LocalCourse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return getAll[models.LocalCourse](m.s, KeyCourses, m.logger)
}

// All returns every course, seeding the defaults when the list is empty.
func (m *CourseMirror) All() []models.LocalCourse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

// Get returns the course with id.
func (m *CourseMirror) Get(id string) (models.LocalCourse, bool) {
	for _, c := range m.All() {
		if c.ID == id {
			return c, true
		}
	}
	return models.LocalCourse{}, false
}

// Add appends a course built from p and returns it.
func (m *CourseMirror) Add(p models.CoursePatch) (models.LocalCourse, error) {
	if !p.HasName() {
		return models.LocalCourse{}, utils.New(utils.KindValidation, "Dados do curso inválidos")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	courses := m.load()
	now := m.now().UTC()
	c := applyLocal(models.LocalCourse{ID: newCourseID(*p.Name, now), CreatedAt: now}, p)
	if err := saveAll(m.s, KeyCourses, append(courses, c)); err != nil {
		return models.LocalCourse{}, utils.Wrap(utils.KindPersistence, "Erro ao salvar curso.", err)
	}
	return c, nil
}

// Update merges p into the course with id, keeping its id.
func (m *CourseMirror) Update(id string, p models.CoursePatch) (models.LocalCourse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	courses := m.load()
	for i := range courses {
		if courses[i].ID != id {
			continue
		}
		courses[i] = applyLocal(courses[i], p)
		if err := saveAll(m.s, KeyCourses, courses); err != nil {
			return models.LocalCourse{}, utils.Wrap(utils.KindPersistence, "Erro ao salvar curso.", err)
		}
		return courses[i], nil
	}
	return models.LocalCourse{}, utils.New(utils.KindNotFound, "Curso não encontrado")
}

// Remove deletes the course with id.
func (m *CourseMirror) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	courses := m.load()
	for i := range courses {
		if courses[i].ID != id {
			continue
		}
		rest := append(courses[:i:i], courses[i+1:]...)
		if err := saveAll(m.s, KeyCourses, rest); err != nil {
			return utils.Wrap(utils.KindPersistence, "Erro ao remover curso.", err)
		}
		return nil
	}
	return utils.New(utils.KindNotFound, "Curso não encontrado")
}

func applyLocal(c models.LocalCourse, p models.CoursePatch) models.LocalCourse {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Name, p.Name)
	set(&c.Description, p.Description)
	set(&c.Duration, p.Duration)
	set(&c.Level, p.Level)
	set(&c.Category, p.Category)
	set(&c.Emoji, p.Emoji)
	return c
}
