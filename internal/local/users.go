package local

import (
	"log/slog"
	"sync"
	"time"

	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

// NewUser is the input of UserMirror.Add.
type NewUser struct {
	Name     string
	Username string
	Secret   string
	Email    string
	Role     models.Role
}

// UserMirror keeps the demo user list under KeyUsers. Secrets are stored in
// clear text, as the browser page did.
type UserMirror struct {
	s      Storage
	logger *slog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

func NewUserMirror(s Storage, logger *slog.Logger) *UserMirror {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &UserMirror{s: s, logger: logger, now: time.Now}
}

func defaultLocalUsers(now time.Time) []models.User {
	return []models.User{
		{ID: "admin_001", Username: "admin", Secret: "1234", Name: "Administrador", Email: "admin@coderfactory.com", Role: models.RoleAdmin, CreatedAt: now},
		{ID: "teste_001", Username: "teste", Secret: "123456", Name: "Usuário Teste", Email: "teste@coderfactory.com", Role: models.RoleStandard, CreatedAt: now},
	}
}

// load returns the stored users, seeding the defaults whenever the list is empty.
func (m *UserMirror) load() []models.User {
	users := getAll[models.User](m.s, KeyUsers, m.logger)
	if len(users) > 0 {
		return users
	}
	users = defaultLocalUsers(m.now().UTC())
	if err := saveAll(m.s, KeyUsers, users); err != nil {
		m.logger.Warn("seeding local users", "error", err)
	}
	return users
}

// All returns every user, secrets included.
func (m *UserMirror) All() []models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

// AllUsers satisfies auth.UserSource.
func (m *UserMirror) AllUsers() ([]models.User, error) {
	return m.All(), nil
}

// Save replaces the whole list.
func (m *UserMirror) Save(users []models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return saveAll(m.s, KeyUsers, users)
}

// Add appends a user. Username and email must be unused.
func (m *UserMirror) Add(in NewUser) (models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleStandard
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.load()
	for _, u := range users {
		if u.Username == in.Username {
			return models.User{}, utils.New(utils.KindConflict, "Usuário já existe")
		}
	}
	for _, u := range users {
		if u.Email == in.Email {
			return models.User{}, utils.New(utils.KindConflict, "Email já cadastrado")
		}
	}

	now := m.now().UTC()
	u := models.User{
		ID:        newUserID(now),
		Username:  in.Username,
		Secret:    in.Secret,
		Name:      in.Name,
		Email:     in.Email,
		Role:      in.Role,
		CreatedAt: now,
	}
	if err := saveAll(m.s, KeyUsers, append(users, u)); err != nil {
		return models.User{}, utils.Wrap(utils.KindPersistence, "Erro ao salvar usuário", err)
	}
	return u, nil
}

// Remove deletes the user with the given username. The primary admin stays.
func (m *UserMirror) Remove(username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.load()
	for i, u := range users {
		if u.Username != username {
			continue
		}
		if u.IsPrimaryAdmin() {
			return utils.New(utils.KindForbidden, "Não é possível remover o usuário administrador principal")
		}
		rest := append(users[:i:i], users[i+1:]...)
		if err := saveAll(m.s, KeyUsers, rest); err != nil {
			return utils.Wrap(utils.KindPersistence, "Erro ao remover usuário", err)
		}
		return nil
	}
	return utils.New(utils.KindNotFound, "Usuário não encontrado")
}

// ChangePassword replaces the secret of username.
func (m *UserMirror) ChangePassword(username, secret string) error {
	if secret == "" {
		return utils.New(utils.KindValidation, "Nova senha é obrigatória")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.load()
	for i := range users {
		if users[i].Username != username {
			continue
		}
		users[i].Secret = secret
		if err := saveAll(m.s, KeyUsers, users); err != nil {
			return utils.Wrap(utils.KindPersistence, "Erro ao alterar senha", err)
		}
		return nil
	}
	return utils.New(utils.KindNotFound, "Usuário não encontrado")
}

func (m *UserMirror) FindByID(id string) (models.User, bool) {
	for _, u := range m.All() {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

func (m *UserMirror) FindByUsername(username string) (models.User, bool) {
	for _, u := range m.All() {
		if u.Username == username {
			return u, true
		}
	}
	return models.User{}, false
}
