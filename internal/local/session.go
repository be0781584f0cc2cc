package local

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

// Enrollments is the "meusCursos" list.
type Enrollments struct {
	s      Storage
	logger *slog.Logger
	mu     sync.Mutex
}

func NewEnrollments(s Storage, logger *slog.Logger) *Enrollments {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &Enrollments{s: s, logger: logger}
}

func (e *Enrollments) List() []models.Enrollment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return getAll[models.Enrollment](e.s, KeyEnrollments, e.logger)
}

// Stored returns the list and whether one has ever been saved.
func (e *Enrollments) Stored() ([]models.Enrollment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	raw, ok := e.s.GetItem(KeyEnrollments)
	if !ok {
		return nil, false
	}
	var list []models.Enrollment
	if err := json.Unmarshal([]byte(raw), &list); err != nil || list == nil {
		return nil, false
	}
	return list, true
}

// Save replaces the whole list.
func (e *Enrollments) Save(list []models.Enrollment) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return saveAll(e.s, KeyEnrollments, list)
}

// Add appends the enrollment unless one with the same title exists.
func (e *Enrollments) Add(en models.Enrollment) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	list := getAll[models.Enrollment](e.s, KeyEnrollments, e.logger)
	for _, x := range list {
		if x.Title == en.Title {
			return utils.New(utils.KindConflict, "Já inscrito.")
		}
	}
	if err := saveAll(e.s, KeyEnrollments, append(list, en)); err != nil {
		return utils.Wrap(utils.KindPersistence, "Erro ao salvar inscrição.", err)
	}
	return nil
}

// SessionStore holds the logged-in snapshot under KeySession.
type SessionStore struct {
	s Storage
}

func NewSessionStore(s Storage) *SessionStore {
	return &SessionStore{s: s}
}

func (st *SessionStore) Save(sess models.Session) error {
	sess.User = sess.User.WithoutSecret()
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return st.s.SetItem(KeySession, string(data))
}

// Load returns the current session. An unreadable snapshot counts as logged out.
func (st *SessionStore) Load() (models.Session, bool) {
	raw, ok := st.s.GetItem(KeySession)
	if !ok || raw == "" {
		return models.Session{}, false
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return models.Session{}, false
	}
	return sess, true
}

func (st *SessionStore) Clear() error {
	return st.s.RemoveItem(KeySession)
}
