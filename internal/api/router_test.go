package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/schoolportal/internal/auth"
	"github.com/harrylevesque/schoolportal/internal/files"
	"github.com/harrylevesque/schoolportal/internal/models"
)

type envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Message  string          `json:"message"`
	Usuario  *models.User    `json:"usuario"`
	TipoErro string          `json:"tipo_erro"`
	Token    string          `json:"token"`
}

func seededStore(t *testing.T) *files.MemoryStore {
	t.Helper()
	store := files.NewMemoryStore()
	require.NoError(t, files.SeedDefaults(store, func(s string) (string, error) {
		return auth.HashPassword(s)
	}, "test", nil))
	return store
}

func newTestRouter(t *testing.T, store files.RecordStore, mutate ...func(*Deps)) http.Handler {
	t.Helper()
	d := Deps{
		Store:     store,
		Tokens:    auth.NewTokenIssuer("test-secret-of-enough-length", time.Hour),
		AssetsDir: t.TempDir(),
		Env:       "test",
	}
	for _, m := range mutate {
		m(&d)
	}
	return NewRouter(d)
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestCreateCourseSequence(t *testing.T) {
	store := files.NewMemoryStore()
	require.NoError(t, store.Write(files.Courses, models.CourseCatalog{Courses: []models.Course{}}))
	h := newTestRouter(t, store)

	w, env := do(t, h, http.MethodPost, "/api/content/courses", map[string]string{"name": "Rust"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	var c models.Course
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, models.CourseID(1), c.ID)
	assert.Equal(t, "Rust", c.Name)

	_, env = do(t, h, http.MethodPost, "/api/content/courses", map[string]string{"name": "Go"})
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, models.CourseID(2), c.ID)

	w, env = do(t, h, http.MethodGet, "/api/content/courses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var catalog models.CourseCatalog
	require.NoError(t, json.Unmarshal(env.Data, &catalog))
	require.Len(t, catalog.Courses, 2)
	assert.Equal(t, "Go", catalog.Courses[1].Name)
}

func TestCourseErrors(t *testing.T) {
	h := newTestRouter(t, seededStore(t))

	w, env := do(t, h, http.MethodPost, "/api/content/courses", map[string]string{"description": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Dados do curso inválidos", env.Message)

	w, env = do(t, h, http.MethodDelete, "/api/content/courses/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Curso não encontrado", env.Message)

	w, env = do(t, h, http.MethodDelete, "/api/content/courses/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ID inválido", env.Message)

	w, env = do(t, h, http.MethodPut, "/api/content/courses/abc", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Dados inválidos", env.Message)

	w, env = do(t, h, http.MethodPut, "/api/content/courses/2", map[string]any{"id": 50, "level": "Avançado"})
	require.Equal(t, http.StatusOK, w.Code)
	var c models.Course
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, models.CourseID(2), c.ID)
	assert.Equal(t, "Avançado", c.Level)
}

func TestContentDocuments(t *testing.T) {
	h := newTestRouter(t, files.NewMemoryStore())
	for path, msg := range map[string]string{
		"/api/content/texts":       "Arquivo de textos não encontrado",
		"/api/content/school-info": "Informações da escola não encontradas",
		"/api/content/courses":     "Lista de cursos não encontrada",
		"/api/content/config":      "Configurações não encontradas",
	} {
		w, env := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, msg, env.Message, path)
	}

	h = newTestRouter(t, seededStore(t))
	w, env := do(t, h, http.MethodGet, "/api/content/texts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var texts models.SiteTexts
	require.NoError(t, json.Unmarshal(env.Data, &texts))
	assert.NotEmpty(t, texts.Site.Title)
}

func TestLoginOutcomes(t *testing.T) {
	h := newTestRouter(t, seededStore(t))

	w, env := do(t, h, http.MethodPost, "/api/auth/login", map[string]string{"usuario": "admin", "senha": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "senha_incorreta", env.TipoErro)
	assert.False(t, env.Success)

	w, env = do(t, h, http.MethodPost, "/api/auth/login", map[string]string{"usuario": "ghost", "senha": "1234"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "usuario_inexistente", env.TipoErro)

	w, env = do(t, h, http.MethodPost, "/api/auth/login", map[string]string{"usuario": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "campos_obrigatorios", env.TipoErro)

	w, env = do(t, h, http.MethodPost, "/api/auth/login", map[string]string{"usuario": "admin", "senha": "1234"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Usuario)
	assert.Equal(t, models.RoleAdmin, env.Usuario.Role)
	assert.NotContains(t, w.Body.String(), "senha\"")
	assert.NotEmpty(t, env.Token)
}

func TestUsersRoutes(t *testing.T) {
	h := newTestRouter(t, seededStore(t))

	w, env := do(t, h, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(env.Data), "senha")
	var list []models.User
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)

	w, env = do(t, h, http.MethodPost, "/api/users", map[string]string{"nome": "Ana", "usuario": "ana", "email": "ana@x.com", "senha": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	var created models.User
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, models.RoleStandard, created.Role)

	w, env = do(t, h, http.MethodPost, "/api/users", map[string]string{"nome": "Ana", "usuario": "ana", "email": "ana2@x.com", "senha": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Usuário ou email já existem", env.Message)

	w, env = do(t, h, http.MethodPut, "/api/users/"+created.ID+"/password", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Nova senha é obrigatória", env.Message)

	w, _ = do(t, h, http.MethodPut, "/api/users/"+created.ID+"/password", map[string]string{"novaSenha": "nova"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, h, http.MethodPost, "/api/auth/login", map[string]string{"usuario": "ana", "senha": "nova"})
	assert.Equal(t, http.StatusOK, w.Code)

	var adminID string
	for _, u := range list {
		if u.Username == "admin" {
			adminID = u.ID
		}
	}
	w, _ = do(t, h, http.MethodDelete, "/api/users/"+adminID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = do(t, h, http.MethodDelete, "/api/users/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"usuario":"ana"`)

	w, env = do(t, h, http.MethodGet, "/api/users/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Usuário não encontrado", env.Message)
}

func TestAdminTokenEnforcement(t *testing.T) {
	h := newTestRouter(t, seededStore(t), func(d *Deps) { d.EnforceAdminToken = true })

	w, _ := do(t, h, http.MethodPost, "/api/content/courses", map[string]string{"name": "Rust"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, env := do(t, h, http.MethodPost, "/api/auth/login", map[string]string{"usuario": "teste", "senha": "123456"})
	require.NotEmpty(t, env.Token)
	w, _ = do(t, h, http.MethodPost, "/api/content/courses", map[string]string{"name": "Rust"}, "Authorization", "Bearer "+env.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, env = do(t, h, http.MethodPost, "/api/auth/login", map[string]string{"usuario": "admin", "senha": "1234"})
	w, _ = do(t, h, http.MethodPost, "/api/content/courses", map[string]string{"name": "Rust"}, "Authorization", "Bearer "+env.Token)
	assert.Equal(t, http.StatusOK, w.Code)

	// reads stay public
	w, _ = do(t, h, http.MethodGet, "/api/content/courses", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRateLimit(t *testing.T) {
	h := newTestRouter(t, seededStore(t), func(d *Deps) {
		d.LoginRatePerSecond = 0.001
		d.LoginBurst = 2
	})
	body := map[string]string{"usuario": "ghost", "senha": "x"}
	for i := 0; i < 2; i++ {
		w, _ := do(t, h, http.MethodPost, "/api/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, _ := do(t, h, http.MethodPost, "/api/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestLoginRateLimitIgnoresForwardedForByDefault(t *testing.T) {
	h := newTestRouter(t, seededStore(t), func(d *Deps) {
		d.LoginRatePerSecond = 0.001
		d.LoginBurst = 1
	})
	body := map[string]string{"usuario": "ghost", "senha": "x"}

	w, _ := do(t, h, http.MethodPost, "/api/auth/login", body, "X-Forwarded-For", "10.0.0.1")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = do(t, h, http.MethodPost, "/api/auth/login", body, "X-Forwarded-For", "10.0.0.2")
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "a fresh header must not buy a fresh limiter")
}

func TestLoginRateLimitBehindTrustedProxy(t *testing.T) {
	h := newTestRouter(t, seededStore(t), func(d *Deps) {
		d.LoginRatePerSecond = 0.001
		d.LoginBurst = 1
		d.TrustProxy = true
	})
	body := map[string]string{"usuario": "ghost", "senha": "x"}

	w, _ := do(t, h, http.MethodPost, "/api/auth/login", body, "X-Forwarded-For", "1.1.1.1, 10.0.0.1")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// the spoofable first entry changes, the proxy-appended hop does not
	w, _ = do(t, h, http.MethodPost, "/api/auth/login", body, "X-Forwarded-For", "2.2.2.2, 10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	w, _ = do(t, h, http.MethodPost, "/api/auth/login", body, "X-Forwarded-For", "10.0.0.2")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 198.51.100.4")

	assert.Equal(t, "192.0.2.7", clientIP(r, false))
	assert.Equal(t, "198.51.100.4", clientIP(r, true))

	r.Header.Del("X-Forwarded-For")
	assert.Equal(t, "192.0.2.7", clientIP(r, true))
}

func TestAssets(t *testing.T) {
	assetsDir := t.TempDir()
	images := filepath.Join(assetsDir, "images")
	require.NoError(t, os.MkdirAll(images, 0o755))
	for _, name := range []string{"logo.svg", "foto.JPG", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(images, name), []byte("x"), 0o644))
	}
	h := newTestRouter(t, files.NewMemoryStore(), func(d *Deps) { d.AssetsDir = assetsDir })

	w, env := do(t, h, http.MethodGet, "/api/assets/images", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Asset
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	for _, a := range list {
		assert.Equal(t, "/api/assets/images/"+a.Filename, a.URL)
	}

	w, env = do(t, h, http.MethodGet, "/api/assets/videos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Equal(t, "Pasta de vídeos não encontrada", env.Message)

	w, _ = do(t, h, http.MethodGet, "/api/assets/logo", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, h, http.MethodGet, "/api/assets/images/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Imagem não encontrada", env.Message)
}

func TestContactAndMisc(t *testing.T) {
	store := seededStore(t)
	h := newTestRouter(t, store)

	w, env := do(t, h, http.MethodPost, "/api/contact", map[string]string{"nome": "Ana", "email": "ana@x.com", "mensagem": "Olá"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	var inbox []models.ContactMessage
	require.NoError(t, store.Read(files.Contacts, &inbox))
	require.Len(t, inbox, 1)

	w, env = do(t, h, http.MethodPost, "/api/contact", map[string]string{"nome": "Ana", "email": "nope", "mensagem": "Olá"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email inválido", env.Message)

	w, _ = do(t, h, http.MethodGet, "/api/config", nil)
	assert.JSONEq(t, `{"environment":"test"}`, w.Body.String())

	w, _ = do(t, h, http.MethodGet, "/api/auth/verify", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, h, http.MethodGet, "/api/nothing/here", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Rota não encontrada")

	w, _ = do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, "OK\n", w.Body.String())
}
