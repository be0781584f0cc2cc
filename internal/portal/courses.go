package portal

import (
	"context"
	"regexp"

	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

var myCoursesPattern = regexp.MustCompile(`(?i)python|ingl`)

func sampleCourses() []models.CourseSummary {
	return []models.CourseSummary{
		{ID: "sample1", Name: "Python", Description: "Programação em Python", Duration: "60h", Level: "Iniciante"},
		{ID: "sample2", Name: "Inglês", Description: "Inglês técnico para programadores", Duration: "100h", Level: "Todos os níveis"},
	}
}

func sampleEnrollments() []models.Enrollment {
	return []models.Enrollment{
		{ID: "c-py", Title: "Python", Description: "Programação em Python", Progress: 10},
		{ID: "c-en", Title: "Inglês", Description: "Inglês técnico para programadores", Progress: 5},
	}
}

// catalog returns the local mirror when it holds courses, else the remote
// catalog. It returns nil when neither is available.
func (p *Portal) catalog(ctx context.Context) ([]models.CourseSummary, Source) {
	if stored := p.courses.Stored(); len(stored) > 0 {
		out := make([]models.CourseSummary, len(stored))
		for i, c := range stored {
			out[i] = c.Summary()
		}
		return out, SourceLocal
	}

	if !p.Online(ctx) {
		return nil, ""
	}
	list, err := p.gw.ListCourses(ctx)
	if err != nil {
		p.fallback("courses", "remote catalog unavailable", err)
		return nil, ""
	}
	if len(list) == 0 {
		return nil, ""
	}
	out := make([]models.CourseSummary, len(list))
	for i, c := range list {
		out[i] = c.Summary()
	}
	return out, SourceRemote
}

// Courses returns the catalog to render, falling back to two sample courses.
func (p *Portal) Courses(ctx context.Context) ([]models.CourseSummary, Source) {
	if list, src := p.catalog(ctx); len(list) > 0 {
		return list, src
	}
	return sampleCourses(), SourceSample
}

// CourseDetails looks a course up by id in the current catalog.
func (p *Portal) CourseDetails(ctx context.Context, id string) (models.CourseSummary, error) {
	list, _ := p.catalog(ctx)
	for _, c := range list {
		if c.ID == id {
			return c, nil
		}
	}
	return models.CourseSummary{}, utils.New(utils.KindNotFound, "Curso não encontrado.")
}

// Enroll adds the course with id to "meusCursos".
func (p *Portal) Enroll(ctx context.Context, id string) (models.Enrollment, error) {
	c, err := p.CourseDetails(ctx, id)
	if err != nil {
		return models.Enrollment{}, err
	}
	en := models.Enrollment{ID: "srv-" + c.ID, Title: c.Name, Description: c.Description, Progress: 0}
	if err := p.enrollments.Add(en); err != nil {
		return models.Enrollment{}, err
	}
	return en, nil
}

// MyCourses is available to logged-in users whose role is not the standard
// one. It derives the Python and Inglês enrollments from the catalog, else
// shows the stored list, else seeds two samples.
func (p *Portal) MyCourses(ctx context.Context) ([]models.Enrollment, error) {
	sess, ok := p.CurrentUser()
	if !ok || sess.Role == "" || sess.Role == models.RoleStandard {
		return nil, utils.New(utils.KindForbidden, "Área disponível apenas para perfis autorizados.")
	}

	if list, _ := p.catalog(ctx); len(list) > 0 {
		var mapped []models.Enrollment
		for _, c := range list {
			if myCoursesPattern.MatchString(c.Name) {
				mapped = append(mapped, models.Enrollment{ID: "srv-" + c.ID, Title: c.Name, Description: c.Description})
			}
		}
		if len(mapped) > 0 {
			if err := p.enrollments.Save(mapped); err != nil {
				return nil, utils.Wrap(utils.KindPersistence, "Erro ao salvar inscrição.", err)
			}
			return mapped, nil
		}
	}

	if stored, ok := p.enrollments.Stored(); ok {
		return stored, nil
	}
	samples := sampleEnrollments()
	if err := p.enrollments.Save(samples); err != nil {
		return nil, utils.Wrap(utils.KindPersistence, "Erro ao salvar inscrição.", err)
	}
	return samples, nil
}
