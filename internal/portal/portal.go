// Package portal chooses between the remote API and the local fallback store
// for every client-side operation.
package portal

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/harrylevesque/schoolportal/internal/auth"
	"github.com/harrylevesque/schoolportal/internal/files"
	"github.com/harrylevesque/schoolportal/internal/gateway"
	"github.com/harrylevesque/schoolportal/internal/local"
	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

// Source says where data came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceSample Source = "sample"
)

// FallbackEvent is emitted whenever an operation falls back to local data.
type FallbackEvent struct {
	Operation string
	Reason    string
	Err       error
	At        time.Time
}

// Options tunes a Portal.
type Options struct {
	Logger     *slog.Logger
	OnFallback func(FallbackEvent)
}

// Portal is the client-side data access facade. Build one per process.
type Portal struct {
	gw          *gateway.Client
	users       *local.UserMirror
	courses     *local.CourseMirror
	enrollments *local.Enrollments
	sessions    *local.SessionStore
	logger      *slog.Logger
	onFallback  func(FallbackEvent)

	mu     sync.Mutex
	probed bool
	online bool
}

// New builds a Portal. gw may be nil for a local-only portal. persisted plays
// the role of localStorage and session the role of sessionStorage.
func New(gw *gateway.Client, persisted, session local.Storage, opts Options) *Portal {
	logger := opts.Logger
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	p := &Portal{
		gw:          gw,
		users:       local.NewUserMirror(persisted, logger),
		courses:     local.NewCourseMirror(persisted, logger),
		enrollments: local.NewEnrollments(persisted, logger),
		sessions:    local.NewSessionStore(session),
		logger:      logger,
		onFallback:  opts.OnFallback,
	}
	if p.gw != nil {
		if sess, ok := p.sessions.Load(); ok && sess.Token != "" {
			p.gw.SetToken(sess.Token)
		}
	}
	return p
}

// LocalCourses exposes the local course mirror.
func (p *Portal) LocalCourses() *local.CourseMirror { return p.courses }

func (p *Portal) fallback(op, reason string, err error) {
	ev := FallbackEvent{Operation: op, Reason: reason, Err: err, At: time.Now()}
	p.logger.Warn("falling back to local data", "operation", op, "reason", reason, "error", err)
	if p.onFallback != nil {
		p.onFallback(ev)
	}
}

// Online probes the API once and remembers the answer.
func (p *Portal) Online(ctx context.Context) bool {
	if p.gw == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.probed {
		p.online = p.gw.Probe(ctx)
		p.probed = true
	}
	return p.online
}

// markOffline forgets a positive probe after a failed remote call.
func (p *Portal) markOffline() {
	p.mu.Lock()
	p.online = false
	p.probed = true
	p.mu.Unlock()
}

// SiteView is what the page renders at start-up.
type SiteView struct {
	Source  Source
	Bundle  models.ContentBundle
	LogoURL string
}

// Initialize loads the remote bundle, or the static local content when the
// API is unreachable or any of the four fetches fails.
func (p *Portal) Initialize(ctx context.Context) SiteView {
	if !p.Online(ctx) {
		p.fallback("initialize", "api unreachable", nil)
		return p.localView()
	}
	b, err := p.gw.LoadSiteBundle(ctx)
	if err != nil || b == nil {
		p.fallback("initialize", "bundle incomplete", err)
		return p.localView()
	}
	return SiteView{Source: SourceRemote, Bundle: *b, LogoURL: p.gw.LogoURL()}
}

func (p *Portal) localView() SiteView {
	return SiteView{
		Source: SourceLocal,
		Bundle: models.ContentBundle{
			Texts:      files.DefaultTexts(),
			SchoolInfo: files.DefaultSchoolInfo(),
			Courses:    models.CourseCatalog{Courses: files.DefaultCourses()},
			Config:     files.DefaultSiteConfig("local"),
		},
		LogoURL: "images/logo.png",
	}
}

// LoginOutcome is the result of Login.
type LoginOutcome struct {
	auth.Result
	Feedback auth.Feedback
	Source   Source
}

// Login checks the credentials remotely when the API is up, otherwise against
// the local mirror. Any answer from the API is final; only a transport failure
// falls back. A success stores the session snapshot.
func (p *Portal) Login(ctx context.Context, usuario, senha string) (LoginOutcome, error) {
	usuario = strings.TrimSpace(usuario)
	senha = strings.TrimSpace(senha)
	if usuario == "" || senha == "" {
		return p.outcome(auth.Result{Outcome: auth.OutcomeMissingFields}, SourceLocal), nil
	}

	if p.Online(ctx) {
		res, err := p.gw.Login(ctx, usuario, senha)
		if err == nil {
			if res.OK() {
				if err := p.startSession(*res.User, res.Token); err != nil {
					return LoginOutcome{}, err
				}
			}
			return p.outcome(res.Result, SourceRemote), nil
		}
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			return LoginOutcome{Source: SourceRemote}, utils.Wrap(kindForStatus(apiErr.Status), apiErr.Message, err)
		}
		p.markOffline()
		p.fallback("login", "remote login failed", err)
	} else {
		p.fallback("login", "api unreachable", nil)
	}

	v := auth.Validator{Users: p.users, Matcher: auth.PlainMatcher{}}
	res, err := v.Validate(usuario, senha)
	if err != nil {
		return LoginOutcome{}, err
	}
	if res.OK() {
		if err := p.startSession(*res.User, ""); err != nil {
			return LoginOutcome{}, err
		}
	}
	return p.outcome(res, SourceLocal), nil
}

func (p *Portal) outcome(res auth.Result, src Source) LoginOutcome {
	return LoginOutcome{Result: res, Feedback: auth.FeedbackFor(res.Outcome), Source: src}
}

func (p *Portal) startSession(u models.User, token string) error {
	if err := p.sessions.Save(models.NewSession(u, token)); err != nil {
		return utils.Wrap(utils.KindPersistence, "Erro ao salvar sessão", err)
	}
	if p.gw != nil {
		p.gw.SetToken(token)
	}
	p.logger.Info("logged in", "usuario", u.Username, "tipo", string(u.Role))
	return nil
}

// Logout clears the session snapshot.
func (p *Portal) Logout() error {
	if p.gw != nil {
		p.gw.SetToken("")
	}
	return p.sessions.Clear()
}

// CurrentUser returns the logged-in session, if any.
func (p *Portal) CurrentUser() (models.Session, bool) {
	return p.sessions.Load()
}
