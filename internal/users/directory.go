// Package users manages the server-side user directory.
package users

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrylevesque/schoolportal/internal/auth"
	"github.com/harrylevesque/schoolportal/internal/files"
	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

const (
	msgRequired       = "Todos os campos são obrigatórios"
	msgDuplicate      = "Usuário ou email já existem"
	msgNotFound       = "Usuário não encontrado"
	msgSecretRequired = "Nova senha é obrigatória"
	msgPrimaryAdmin   = "Não é possível remover o usuário administrador principal"
	msgSaveFailed     = "Erro ao salvar usuário"
	msgSaveChanges    = "Erro ao salvar alterações"
)

// NewUser is the payload of a create request.
type NewUser struct {
	Name     string      `json:"nome"`
	Username string      `json:"usuario"`
	Email    string      `json:"email"`
	Secret   string      `json:"senha"`
	Role     models.Role `json:"tipo"`
}

// Removed is what a delete reports back.
type Removed struct {
	ID       string `json:"id"`
	Name     string `json:"nome"`
	Username string `json:"usuario"`
}

// Directory stores users with bcrypt-hashed secrets in the "users" collection.
type Directory struct {
	store  files.RecordStore
	hash   files.HashFunc
	logger *slog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

func NewDirectory(store files.RecordStore, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &Directory{store: store, hash: auth.HashPassword, logger: logger, now: time.Now}
}

// AllUsers returns the raw records, secrets included. It satisfies auth.UserSource.
func (d *Directory) AllUsers() ([]models.User, error) {
	return d.load(), nil
}

// load treats an absent or unreadable collection as empty.
func (d *Directory) load() []models.User {
	var list []models.User
	if err := d.store.Read(files.Users, &list); err != nil {
		if !errors.Is(err, files.ErrNotFound) {
			d.logger.Warn("user collection unreadable, treating as empty", "error", err)
		}
		return []models.User{}
	}
	return list
}

func (d *Directory) save(list []models.User, msg string) error {
	if err := d.store.Write(files.Users, list); err != nil {
		d.logger.Error("persisting users", "error", err)
		return utils.Wrap(utils.KindPersistence, msg, err)
	}
	return nil
}

// List returns every user without secrets.
func (d *Directory) List() []models.User {
	return models.StripSecrets(d.load())
}

// Get returns the user with id, without its secret.
func (d *Directory) Get(id string) (models.User, error) {
	for _, u := range d.load() {
		if u.ID == id {
			return u.WithoutSecret(), nil
		}
	}
	return models.User{}, utils.New(utils.KindNotFound, msgNotFound)
}

// Create validates and stores a new user. Usernames and emails are unique.
func (d *Directory) Create(in NewUser) (models.User, error) {
	if in.Name == "" || in.Username == "" || in.Email == "" || in.Secret == "" {
		return models.User{}, utils.New(utils.KindValidation, msgRequired)
	}
	if in.Role == "" {
		in.Role = models.RoleStandard
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	list := d.load()
	for _, u := range list {
		if u.Username == in.Username || u.Email == in.Email {
			return models.User{}, utils.New(utils.KindConflict, msgDuplicate)
		}
	}

	hashed, err := d.hash(in.Secret)
	if err != nil {
		return models.User{}, utils.Wrap(utils.KindInternal, "Erro ao adicionar usuário", err)
	}
	u := models.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Username:  in.Username,
		Email:     in.Email,
		Secret:    hashed,
		Role:      in.Role,
		CreatedAt: d.now().UTC(),
	}
	if err := d.save(append(list, u), msgSaveFailed); err != nil {
		return models.User{}, err
	}
	d.logger.Info("user created", "id", u.ID, "usuario", u.Username, "tipo", string(u.Role))
	return u.WithoutSecret(), nil
}

// Delete removes the user with id. The primary admin account is protected.
func (d *Directory) Delete(id string) (Removed, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := d.load()
	for i, u := range list {
		if u.ID != id {
			continue
		}
		if u.IsPrimaryAdmin() {
			return Removed{}, utils.New(utils.KindForbidden, msgPrimaryAdmin)
		}
		rest := append(list[:i:i], list[i+1:]...)
		if err := d.save(rest, msgSaveChanges); err != nil {
			return Removed{}, err
		}
		d.logger.Info("user deleted", "id", u.ID, "usuario", u.Username)
		return Removed{ID: u.ID, Name: u.Name, Username: u.Username}, nil
	}
	return Removed{}, utils.New(utils.KindNotFound, msgNotFound)
}

// ChangePassword replaces the secret of the user with id.
func (d *Directory) ChangePassword(id, secret string) error {
	if secret == "" {
		return utils.New(utils.KindValidation, msgSecretRequired)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	list := d.load()
	for i := range list {
		if list[i].ID != id {
			continue
		}
		hashed, err := d.hash(secret)
		if err != nil {
			return utils.Wrap(utils.KindInternal, "Erro ao alterar senha", err)
		}
		list[i].Secret = hashed
		if err := d.save(list, msgSaveChanges); err != nil {
			return err
		}
		d.logger.Info("password changed", "id", id)
		return nil
	}
	return utils.New(utils.KindNotFound, msgNotFound)
}
