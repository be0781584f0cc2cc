package users

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/schoolportal/internal/auth"
	"github.com/harrylevesque/schoolportal/internal/files"
	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

func newDirectory(t *testing.T) *Directory {
	t.Helper()
	store := files.NewMemoryStore()
	d := NewDirectory(store, nil)
	d.hash = func(s string) (string, error) { return "h:" + s, nil }
	require.NoError(t, files.SeedDefaults(store, d.hash, "test", utils.DiscardLogger()))
	return d
}

func TestCreateDefaultsRoleAndHidesSecret(t *testing.T) {
	d := newDirectory(t)

	u, err := d.Create(NewUser{Name: "Ana", Username: "ana", Email: "ana@x.com", Secret: "pw"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStandard, u.Role)
	assert.Empty(t, u.Secret)
	assert.NotEmpty(t, u.ID)

	all, err := d.AllUsers()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "h:pw", all[2].Secret)

	for _, listed := range d.List() {
		assert.Empty(t, listed.Secret)
	}
}

func TestCreateValidation(t *testing.T) {
	d := newDirectory(t)

	_, err := d.Create(NewUser{Name: "Ana", Username: "ana", Email: "ana@x.com"})
	assert.Equal(t, "Todos os campos são obrigatórios", utils.MessageOf(err, ""))
	assert.Equal(t, http.StatusBadRequest, utils.StatusOf(err))

	_, err = d.Create(NewUser{Name: "Outro", Username: "admin", Email: "novo@x.com", Secret: "pw"})
	assert.Equal(t, "Usuário ou email já existem", utils.MessageOf(err, ""))

	_, err = d.Create(NewUser{Name: "Outro", Username: "novo", Email: "admin@coderfactory.com", Secret: "pw"})
	assert.Equal(t, "Usuário ou email já existem", utils.MessageOf(err, ""))
}

func TestDeleteProtectsPrimaryAdmin(t *testing.T) {
	d := newDirectory(t)

	var adminID, testeID string
	for _, u := range d.List() {
		switch u.Username {
		case "admin":
			adminID = u.ID
		case "teste":
			testeID = u.ID
		}
	}

	_, err := d.Delete(adminID)
	assert.Equal(t, http.StatusForbidden, utils.StatusOf(err))

	removed, err := d.Delete(testeID)
	require.NoError(t, err)
	assert.Equal(t, Removed{ID: testeID, Name: "Usuário Teste", Username: "teste"}, removed)

	_, err = d.Delete(testeID)
	assert.Equal(t, http.StatusNotFound, utils.StatusOf(err))
}

func TestChangePassword(t *testing.T) {
	d := newDirectory(t)
	u, err := d.Create(NewUser{Name: "Ana", Username: "ana", Email: "ana@x.com", Secret: "pw"})
	require.NoError(t, err)

	assert.Equal(t, "Nova senha é obrigatória", utils.MessageOf(d.ChangePassword(u.ID, ""), ""))
	assert.Equal(t, http.StatusNotFound, utils.StatusOf(d.ChangePassword("ghost", "x")))
	require.NoError(t, d.ChangePassword(u.ID, "new"))

	v := auth.Validator{Users: d, Matcher: matcherFunc(func(stored, supplied string) bool { return stored == "h:"+supplied })}
	res, err := v.Validate("ana", "new")
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestBcryptLoginAgainstSeededDirectory(t *testing.T) {
	store := files.NewMemoryStore()
	d := NewDirectory(store, nil)
	require.NoError(t, files.SeedDefaults(store, auth.HashPassword, "test", nil))

	v := auth.Validator{Users: d, Matcher: auth.BcryptMatcher{}}
	res, err := v.Validate("admin", "1234")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Empty(t, res.User.Secret)

	res, err = v.Validate("admin", "wrong")
	require.NoError(t, err)
	assert.Equal(t, auth.OutcomeWrongSecret, res.Outcome)
}

type matcherFunc func(stored, supplied string) bool

func (f matcherFunc) Match(stored, supplied string) bool { return f(stored, supplied) }
