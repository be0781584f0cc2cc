package portal

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/harrylevesque/schoolportal/internal/gateway"
	"github.com/harrylevesque/schoolportal/internal/local"
	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

// remote runs call against the API when it is reachable. It reports false when
// the caller should use the local mirror instead. API rejections are returned
// as *utils.Error carrying the server message.
func (p *Portal) remote(ctx context.Context, op string, call func() error) (bool, error) {
	if !p.Online(ctx) {
		return false, nil
	}
	err := call()
	if err == nil {
		return true, nil
	}
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return true, utils.Wrap(kindForStatus(apiErr.Status), apiErr.Message, err)
	}
	p.markOffline()
	p.fallback(op, "remote call failed", err)
	return false, nil
}

func kindForStatus(status int) utils.Kind {
	switch status {
	case http.StatusBadRequest:
		return utils.KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return utils.KindForbidden
	case http.StatusNotFound:
		return utils.KindNotFound
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		return utils.KindUnavailable
	default:
		return utils.KindInternal
	}
}

// CreateCourse adds a course through the API, or to the local mirror.
func (p *Portal) CreateCourse(ctx context.Context, patch models.CoursePatch) (models.CourseSummary, error) {
	var out models.CourseSummary
	ok, err := p.remote(ctx, "create course", func() error {
		c, err := p.gw.CreateCourse(ctx, patch)
		out = c.Summary()
		return err
	})
	if ok {
		return out, err
	}
	c, err := p.courses.Add(patch)
	return c.Summary(), err
}

// UpdateCourse merges patch into the course with id. Remote ids are numeric.
func (p *Portal) UpdateCourse(ctx context.Context, id string, patch models.CoursePatch) (models.CourseSummary, error) {
	var out models.CourseSummary
	ok, err := p.remote(ctx, "update course", func() error {
		cid, valid := models.ParseCourseID(id)
		if !valid {
			return &gateway.APIError{Status: http.StatusBadRequest, Message: "Dados inválidos"}
		}
		c, err := p.gw.UpdateCourse(ctx, cid, patch)
		out = c.Summary()
		return err
	})
	if ok {
		return out, err
	}
	c, err := p.courses.Update(id, patch)
	return c.Summary(), err
}

// DeleteCourse removes the course with id.
func (p *Portal) DeleteCourse(ctx context.Context, id string) error {
	ok, err := p.remote(ctx, "delete course", func() error {
		cid, valid := models.ParseCourseID(id)
		if !valid {
			return &gateway.APIError{Status: http.StatusBadRequest, Message: "ID inválido"}
		}
		_, err := p.gw.DeleteCourse(ctx, cid)
		return err
	})
	if ok {
		return err
	}
	return p.courses.Remove(id)
}

// ListUsers returns every user without secrets.
func (p *Portal) ListUsers(ctx context.Context) ([]models.User, Source, error) {
	var out []models.User
	ok, err := p.remote(ctx, "list users", func() error {
		var err error
		out, err = p.gw.ListUsers(ctx)
		return err
	})
	if ok {
		return out, SourceRemote, err
	}
	return models.StripSecrets(p.users.All()), SourceLocal, nil
}

// AddUser creates a user.
func (p *Portal) AddUser(ctx context.Context, in local.NewUser) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Username == "" || in.Email == "" || in.Secret == "" {
		return models.User{}, utils.New(utils.KindValidation, "Todos os campos são obrigatórios")
	}

	var out models.User
	ok, err := p.remote(ctx, "add user", func() error {
		var err error
		out, err = p.gw.CreateUser(ctx, gateway.NewUser{
			Name: in.Name, Username: in.Username, Email: in.Email, Secret: in.Secret, Role: in.Role,
		})
		return err
	})
	if ok {
		return out, err
	}
	u, err := p.users.Add(in)
	return u.WithoutSecret(), err
}

// findRemoteUser resolves a username to the API user id.
func (p *Portal) findRemoteUser(ctx context.Context, username string) (string, error) {
	list, err := p.gw.ListUsers(ctx)
	if err != nil {
		return "", err
	}
	for _, u := range list {
		if u.Username == username {
			return u.ID, nil
		}
	}
	return "", &gateway.APIError{Status: http.StatusNotFound, Message: "Usuário não encontrado"}
}

// RemoveUser deletes the user with username.
func (p *Portal) RemoveUser(ctx context.Context, username string) error {
	ok, err := p.remote(ctx, "remove user", func() error {
		id, err := p.findRemoteUser(ctx, username)
		if err != nil {
			return err
		}
		_, err = p.gw.DeleteUser(ctx, id)
		return err
	})
	if ok {
		return err
	}
	return p.users.Remove(username)
}

// ChangePassword sets a new secret for username.
func (p *Portal) ChangePassword(ctx context.Context, username, secret string) error {
	if secret == "" {
		return utils.New(utils.KindValidation, "Nova senha é obrigatória")
	}
	ok, err := p.remote(ctx, "change password", func() error {
		id, err := p.findRemoteUser(ctx, username)
		if err != nil {
			return err
		}
		return p.gw.ChangePassword(ctx, id, secret)
	})
	if ok {
		return err
	}
	return p.users.ChangePassword(username, secret)
}

// SendContact submits the contact form. There is no local fallback.
func (p *Portal) SendContact(ctx context.Context, name, email, message string) error {
	ok, err := p.remote(ctx, "contact", func() error {
		return p.gw.SendContact(ctx, name, email, message)
	})
	if ok {
		return err
	}
	return utils.New(utils.KindUnavailable, "Erro ao enviar mensagem")
}
