package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/harrylevesque/schoolportal/internal/auth"
	"github.com/harrylevesque/schoolportal/internal/files"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

// Deps configures NewRouter.
type Deps struct {
	Store     files.RecordStore
	Tokens    *auth.TokenIssuer
	AssetsDir string
	StaticDir string
	Env       string
	Logger    *slog.Logger

	EnforceAdminToken  bool
	LoginRatePerSecond float64
	LoginBurst         int

	// TrustProxy keys clients by X-Forwarded-For; set only behind a reverse proxy.
	TrustProxy bool
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = utils.DiscardLogger()
	}
	h := newHandler(d)
	admin := requireAdmin(d.Tokens, d.EnforceAdminToken)
	loginLimit := rateLimit(d.LoginRatePerSecond, d.LoginBurst, d.TrustProxy)

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			d.Logger.Debug("health write failed", "error", err)
		}
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	content := api.PathPrefix("/content").Subrouter()
	content.HandleFunc("/texts", h.getDocument(files.Texts, "Arquivo de textos não encontrado")).Methods(http.MethodGet)
	content.HandleFunc("/school-info", h.getDocument(files.SchoolInfo, "Informações da escola não encontradas")).Methods(http.MethodGet)
	content.HandleFunc("/config", h.getDocument(files.Config, "Configurações não encontradas")).Methods(http.MethodGet)
	content.HandleFunc("/courses", h.listCourses).Methods(http.MethodGet)
	content.Handle("/courses", admin(http.HandlerFunc(h.createCourse))).Methods(http.MethodPost)
	content.Handle("/courses/{id}", admin(http.HandlerFunc(h.updateCourse))).Methods(http.MethodPut)
	content.Handle("/courses/{id}", admin(http.HandlerFunc(h.deleteCourse))).Methods(http.MethodDelete)

	assets := api.PathPrefix("/assets").Subrouter()
	assets.HandleFunc("/images", h.listAssets(h.images())).Methods(http.MethodGet)
	assets.HandleFunc("/videos", h.listAssets(h.videos())).Methods(http.MethodGet)
	assets.HandleFunc("/images/{filename}", h.serveAsset(h.images())).Methods(http.MethodGet)
	assets.HandleFunc("/videos/{filename}", h.serveAsset(h.videos())).Methods(http.MethodGet)
	assets.HandleFunc("/logo", h.logo).Methods(http.MethodGet)

	api.Handle("/auth/login", loginLimit(http.HandlerFunc(h.login))).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify", h.verify).Methods(http.MethodGet)

	api.Handle("/users", admin(http.HandlerFunc(h.listUsers))).Methods(http.MethodGet)
	api.Handle("/users", admin(http.HandlerFunc(h.createUser))).Methods(http.MethodPost)
	api.Handle("/users/{id}", admin(http.HandlerFunc(h.getUser))).Methods(http.MethodGet)
	api.Handle("/users/{id}", admin(http.HandlerFunc(h.deleteUser))).Methods(http.MethodDelete)
	api.Handle("/users/{id}/password", admin(http.HandlerFunc(h.changePassword))).Methods(http.MethodPut)

	api.HandleFunc("/contact", h.contact).Methods(http.MethodPost)
	api.HandleFunc("/config", h.runtimeConfig).Methods(http.MethodGet)

	api.PathPrefix("/").HandlerFunc(apiNotFound)

	if d.StaticDir != "" {
		r.PathPrefix("/").Handler(staticSite(d.StaticDir))
	}
	r.NotFoundHandler = http.HandlerFunc(notFound)

	var handler http.Handler = r
	handler = cors(handler)
	handler = requestLogger(d.Logger, d.TrustProxy)(handler)
	handler = recoverer(d.Logger)(handler)
	return handler
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error":   "Rota não encontrada",
		"message": fmt.Sprintf("A rota %s não foi encontrada", r.URL.RequestURI()),
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if len(r.URL.Path) >= 5 && r.URL.Path[:5] == "/api/" {
		apiNotFound(w, r)
		return
	}
	http.NotFound(w, r)
}

// staticSite serves the front end from dir. Unknown paths get index.html.
func staticSite(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		if info, err := os.Stat(path + ".html"); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path+".html")
			return
		}
		http.ServeFile(w, r, indexPath)
	})
}
