package courses

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/schoolportal/internal/files"
	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

func str(s string) *string { return &s }

func TestCreateAssignsSequentialIDs(t *testing.T) {
	store := files.NewMemoryStore()
	require.NoError(t, store.Write(files.Courses, models.CourseCatalog{Courses: []models.Course{}}))
	reg := NewRegistry(store, nil)

	rust, err := reg.Create(models.CoursePatch{Name: str("Rust")})
	require.NoError(t, err)
	assert.Equal(t, models.CourseID(1), rust.ID)

	golang, err := reg.Create(models.CoursePatch{Name: str("Go")})
	require.NoError(t, err)
	assert.Equal(t, models.CourseID(2), golang.ID)

	list, err := reg.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Rust", list[0].Name)
	assert.Equal(t, "Go", list[1].Name)
}

func TestCreateUsesMaxPlusOne(t *testing.T) {
	store := files.NewMemoryStore()
	require.NoError(t, store.Write(files.Courses, models.CourseCatalog{Courses: []models.Course{{ID: 7, Name: "A"}, {ID: 3, Name: "B"}}}))
	reg := NewRegistry(store, nil)

	c, err := reg.Create(models.CoursePatch{Name: str("C")})
	require.NoError(t, err)
	assert.Equal(t, models.CourseID(8), c.ID)
}

func TestCreateRejectsMissingName(t *testing.T) {
	reg := NewRegistry(files.NewMemoryStore(), nil)
	_, err := reg.Create(models.CoursePatch{Description: str("sem nome")})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, utils.StatusOf(err))
	assert.Equal(t, "Dados do curso inválidos", utils.MessageOf(err, ""))
}

func TestCreateRejectsBlankName(t *testing.T) {
	store := files.NewMemoryStore()
	reg := NewRegistry(store, nil)
	_, err := reg.Create(models.CoursePatch{Name: str("   ")})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, utils.StatusOf(err))
	assert.Equal(t, "Dados do curso inválidos", utils.MessageOf(err, ""))
}

func TestListMissingCollection(t *testing.T) {
	reg := NewRegistry(files.NewMemoryStore(), nil)
	_, err := reg.List()
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, utils.StatusOf(err))
	assert.Equal(t, "Lista de cursos não encontrada", utils.MessageOf(err, ""))
}

func TestListCorruptCollectionIsEmpty(t *testing.T) {
	store := files.NewMemoryStore()
	store.PutRaw(files.Courses, []byte("{broken"))
	reg := NewRegistry(store, nil)

	list, err := reg.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateMergesAndKeepsID(t *testing.T) {
	store := files.NewMemoryStore()
	require.NoError(t, store.Write(files.Courses, models.CourseCatalog{Courses: files.DefaultCourses()}))
	reg := NewRegistry(store, nil)

	updated, err := reg.Update(2, models.CoursePatch{Level: str("Avançado")})
	require.NoError(t, err)
	assert.Equal(t, models.CourseID(2), updated.ID)
	assert.Equal(t, "Python", updated.Name)
	assert.Equal(t, "Avançado", updated.Level)

	_, err = reg.Update(99, models.CoursePatch{Name: str("x")})
	assert.Equal(t, http.StatusNotFound, utils.StatusOf(err))
	assert.Equal(t, "Curso não encontrado", utils.MessageOf(err, ""))
}

func TestDeleteUnknownLeavesCollection(t *testing.T) {
	store := files.NewMemoryStore()
	require.NoError(t, store.Write(files.Courses, models.CourseCatalog{Courses: files.DefaultCourses()}))
	reg := NewRegistry(store, nil)

	_, err := reg.Delete(99)
	require.Error(t, err)
	assert.Equal(t, "Curso não encontrado", utils.MessageOf(err, ""))

	list, err := reg.List()
	require.NoError(t, err)
	assert.Len(t, list, 6)

	removed, err := reg.Delete(1)
	require.NoError(t, err)
	assert.Equal(t, "Excel", removed.Name)
	list, err = reg.List()
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestPersistenceFailure(t *testing.T) {
	store := files.NewMemoryStore()
	require.NoError(t, store.Write(files.Courses, models.CourseCatalog{Courses: files.DefaultCourses()}))
	store.FailWrites = true
	reg := NewRegistry(store, nil)

	_, err := reg.Create(models.CoursePatch{Name: str("Rust")})
	assert.Equal(t, http.StatusInternalServerError, utils.StatusOf(err))
	assert.Equal(t, "Falha ao salvar curso", utils.MessageOf(err, ""))

	_, err = reg.Delete(1)
	assert.Equal(t, "Falha ao remover curso", utils.MessageOf(err, ""))
}
