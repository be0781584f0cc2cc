package files

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/harrylevesque/schoolportal/internal/models"
)

// AboutText is the fixed "about" copy shown when no remote content is available.
const AboutText = "Nosso objetivo é ensinar e apoiar a nova geração no aprendizado de idiomas e no uso da tecnologia. Aqui, o conhecimento é para todos: oferecemos recursos em Libras e áudio, para que cada pessoa aprenda de forma acessível e inclusiva."

// DefaultTexts returns the built-in site copy.
func DefaultTexts() models.SiteTexts {
	var t models.SiteTexts
	t.Site.Title = "CoderFactory"
	t.Site.Description = "Escola de tecnologia e idiomas"
	t.Sections.About = models.TextSection{Title: "Sobre nós", Content: AboutText}
	t.Sections.Contact.Title = "Contato"
	t.Sections.Contact.Form.Name = "Nome"
	t.Sections.Contact.Form.Email = "Email"
	t.Sections.Contact.Form.Message = "Mensagem"
	t.Sections.Contact.Form.Submit = "Enviar"
	t.Sections.Video = models.TextSection{Title: "Apresentação"}
	return t
}

// DefaultSchoolInfo returns the built-in school details.
func DefaultSchoolInfo() models.SchoolInfo {
	return models.SchoolInfo{
		Name:   "CoderFactory",
		Slogan: "Tecnologia e idiomas para todos",
		Email:  "contato@coderfactory.com",
		Logo:   models.Logo{Filename: "logo.png", Alt: "Logo CoderFactory"},
	}
}

// DefaultSiteConfig returns the built-in site configuration for env.
func DefaultSiteConfig(env string) models.SiteConfig {
	return models.SiteConfig{
		Environment: env,
		Features:    map[string]bool{"contact": true, "video": true},
	}
}

// DefaultCourses returns the six catalog courses with ids 1..6.
func DefaultCourses() []models.Course {
	return []models.Course{
		{ID: 1, Name: "Excel", Description: "Aprenda Excel do básico ao avançado", Duration: "40h", Level: "Iniciante a Avançado", Category: "Office", Emoji: "📊"},
		{ID: 2, Name: "Python", Description: "Programação em Python", Duration: "60h", Level: "Iniciante", Category: "Programação", Emoji: "💻"},
		{ID: 3, Name: "Arduino", Description: "Introdução à programação com Arduino", Duration: "40h", Level: "Iniciante", Category: "Eletrônica", Emoji: "⚡"},
		{ID: 4, Name: "Criação de jogos", Description: "Aprenda a criar seus próprios jogos", Duration: "80h", Level: "Intermediário", Category: "Game Development", Emoji: "🎮"},
		{ID: 5, Name: "Inglês", Description: "Inglês técnico para programadores", Duration: "100h", Level: "Todos os níveis", Category: "Idiomas", Emoji: "🌎"},
		{ID: 6, Name: "Espanhol", Description: "Espanhol para tecnologia", Duration: "100h", Level: "Todos os níveis", Category: "Idiomas", Emoji: "🌎"},
	}
}

// HashFunc turns a clear-text secret into its stored form.
type HashFunc func(secret string) (string, error)

// SeedDefaults writes the default document of every collection whose file is
// absent. Existing collections are never touched, so repeated calls are no-ops.
func SeedDefaults(store RecordStore, hash HashFunc, env string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if !store.Exists(Users) {
		users, err := defaultUsers(hash)
		if err != nil {
			return err
		}
		if err := seed(store, Users, users, logger); err != nil {
			return err
		}
	}

	docs := []struct {
		c Collection
		v any
	}{
		{Courses, models.CourseCatalog{Courses: DefaultCourses()}},
		{Texts, DefaultTexts()},
		{SchoolInfo, DefaultSchoolInfo()},
		{Config, DefaultSiteConfig(env)},
		{Contacts, []models.ContactMessage{}},
	}
	for _, d := range docs {
		if store.Exists(d.c) {
			continue
		}
		if err := seed(store, d.c, d.v, logger); err != nil {
			return err
		}
	}
	return nil
}

func seed(store RecordStore, c Collection, v any, logger *slog.Logger) error {
	if err := store.Write(c, v); err != nil {
		return fmt.Errorf("seeding %s: %w", c, err)
	}
	logger.Info("seeded collection", "collection", string(c))
	return nil
}

func defaultUsers(hash HashFunc) ([]models.User, error) {
	now := time.Now().UTC()
	accounts := []struct {
		name, username, email, secret string
		role                          models.Role
	}{
		{"Administrador", "admin", "admin@coderfactory.com", "1234", models.RoleAdmin},
		{"Usuário Teste", "teste", "teste@coderfactory.com", "123456", models.RoleStandard},
	}

	users := make([]models.User, 0, len(accounts))
	for _, a := range accounts {
		hashed, err := hash(a.secret)
		if err != nil {
			return nil, fmt.Errorf("hashing default secret for %s: %w", a.username, err)
		}
		users = append(users, models.User{
			ID:        uuid.NewString(),
			Name:      a.name,
			Username:  a.username,
			Email:     a.email,
			Secret:    hashed,
			Role:      a.role,
			CreatedAt: now,
		})
	}
	return users, nil
}
