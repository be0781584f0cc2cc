package local

import (
	"net/http"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/schoolportal/internal/auth"
	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

func str(s string) *string { return &s }

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	s, err := NewFileStorage(path)
	require.NoError(t, err)

	_, ok := s.GetItem("k")
	assert.False(t, ok)

	require.NoError(t, s.SetItem("k", "v"))
	again, err := NewFileStorage(path)
	require.NoError(t, err)
	v, ok := again.GetItem("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, again.RemoveItem("k"))
	_, ok = s.GetItem("k")
	assert.False(t, ok)
}

func TestGetAllUnreadableIsEmpty(t *testing.T) {
	s := NewMemoryStorage()
	require.NoError(t, s.SetItem(KeyEnrollments, "not json"))
	assert.Empty(t, NewEnrollments(s, nil).List())
}

func TestUserMirrorSeedsAndReseeds(t *testing.T) {
	s := NewMemoryStorage()
	m := NewUserMirror(s, nil)

	users := m.All()
	require.Len(t, users, 2)
	assert.Equal(t, "admin_001", users[0].ID)
	assert.Equal(t, "1234", users[0].Secret)

	require.NoError(t, m.Save([]models.User{}))
	assert.Len(t, m.All(), 2, "an emptied mirror is seeded again")
}

func TestUserMirrorAdd(t *testing.T) {
	m := NewUserMirror(NewMemoryStorage(), nil)

	u, err := m.Add(NewUser{Name: "Ana", Username: "ana", Secret: "pw", Email: "ana@x.com"})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^user_\d+_[0-9a-z]{9}$`), u.ID)
	assert.Equal(t, models.RoleStandard, u.Role)

	_, err = m.Add(NewUser{Name: "X", Username: "ana", Email: "other@x.com"})
	assert.Equal(t, "Usuário já existe", utils.MessageOf(err, ""))

	_, err = m.Add(NewUser{Name: "X", Username: "other", Email: "ana@x.com"})
	assert.Equal(t, "Email já cadastrado", utils.MessageOf(err, ""))

	found, ok := m.FindByUsername("ana")
	require.True(t, ok)
	assert.Equal(t, u.ID, found.ID)
	_, ok = m.FindByID(u.ID)
	assert.True(t, ok)
}

func TestUserMirrorRemove(t *testing.T) {
	m := NewUserMirror(NewMemoryStorage(), nil)

	err := m.Remove("admin")
	assert.Equal(t, http.StatusForbidden, utils.StatusOf(err))
	assert.Equal(t, "Não é possível remover o usuário administrador principal", utils.MessageOf(err, ""))

	require.NoError(t, m.Remove("teste"))
	assert.Len(t, m.All(), 1)

	assert.Equal(t, http.StatusNotFound, utils.StatusOf(m.Remove("teste")))
}

func TestUserMirrorPlainLogin(t *testing.T) {
	m := NewUserMirror(NewMemoryStorage(), nil)
	v := auth.Validator{Users: m, Matcher: auth.PlainMatcher{}}

	res, err := v.Validate("teste", "123456")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Empty(t, res.User.Secret)

	require.NoError(t, m.ChangePassword("teste", "novo"))
	res, err = v.Validate("teste", "123456")
	require.NoError(t, err)
	assert.Equal(t, auth.OutcomeWrongSecret, res.Outcome)

	assert.Equal(t, http.StatusNotFound, utils.StatusOf(m.ChangePassword("ghost", "x")))
}

func TestCourseMirror(t *testing.T) {
	m := NewCourseMirror(NewMemoryStorage(), nil)

	all := m.All()
	require.Len(t, all, 6)
	assert.Equal(t, "excel_001", all[0].ID)

	c, err := m.Add(models.CoursePatch{Name: str("Robótica Avançada 2"), Duration: str("30h")})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^robticaava_\d+_[0-9a-z]{4}$`), c.ID)
	assert.Len(t, m.All(), 7)

	updated, err := m.Update(c.ID, models.CoursePatch{Level: str("Avançado")})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, "30h", updated.Duration)
	assert.Equal(t, "Avançado", updated.Level)

	_, err = m.Update("missing", models.CoursePatch{})
	assert.Equal(t, http.StatusNotFound, utils.StatusOf(err))

	require.NoError(t, m.Remove(c.ID))
	_, ok := m.Get(c.ID)
	assert.False(t, ok)
	assert.Equal(t, http.StatusNotFound, utils.StatusOf(m.Remove(c.ID)))

	_, err = m.Add(models.CoursePatch{})
	assert.Equal(t, http.StatusBadRequest, utils.StatusOf(err))
}

func TestCourseSlug(t *testing.T) {
	assert.Equal(t, "ingls", courseSlug("Inglês"))
	assert.Equal(t, "criaodejog", courseSlug("Criação de jogos"))
	assert.Equal(t, "", courseSlug("ção"))
}

func TestEnrollmentsRejectDuplicateTitle(t *testing.T) {
	e := NewEnrollments(NewMemoryStorage(), nil)
	require.NoError(t, e.Add(models.Enrollment{ID: "srv-2", Title: "Python"}))
	err := e.Add(models.Enrollment{ID: "srv-9", Title: "Python"})
	assert.Equal(t, "Já inscrito.", utils.MessageOf(err, ""))
	assert.Len(t, e.List(), 1)
}

func TestSessionStore(t *testing.T) {
	st := NewSessionStore(NewMemoryStorage())
	_, ok := st.Load()
	assert.False(t, ok)

	u := models.User{ID: "admin_001", Username: "admin", Secret: "1234", Role: models.RoleAdmin}
	require.NoError(t, st.Save(models.NewSession(u, "tok")))

	sess, ok := st.Load()
	require.True(t, ok)
	assert.Equal(t, "admin", sess.User.Username)
	assert.Empty(t, sess.User.Secret)
	assert.Equal(t, "tok", sess.Token)

	require.NoError(t, st.Clear())
	_, ok = st.Load()
	assert.False(t, ok)
}
