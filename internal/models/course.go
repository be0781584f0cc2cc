package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// CourseID is the server-side integer course id. It decodes from a JSON number
// or a numeric string; anything else decodes as 0 and never matches a lookup.
type CourseID int

func (id *CourseID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*id = 0
			return nil
		}
		*id = CourseID(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*id = CourseID(int(f))
	return nil
}

// ParseCourseID parses a path segment the way the original API did: non-numeric
// or zero ids are invalid.
func ParseCourseID(s string) (CourseID, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n == 0 {
		return 0, false
	}
	return CourseID(n), true
}

// Course is a record of the server course collection.
type Course struct {
	ID          CourseID   `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Duration    string     `json:"duration,omitempty"`
	Level       string     `json:"level,omitempty"`
	Category    string     `json:"category,omitempty"`
	Emoji       string     `json:"emoji,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// CourseCatalog is the on-disk and on-the-wire shape of courses.json.
type CourseCatalog struct {
	Courses []Course `json:"courses"`
}

// CoursePatch carries the fields supplied by a create or update request.
// Nil fields are left untouched.
type CoursePatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Duration    *string `json:"duration,omitempty"`
	Level       *string `json:"level,omitempty"`
	Category    *string `json:"category,omitempty"`
	Emoji       *string `json:"emoji,omitempty"`
}

// HasName reports whether the patch carries a name that is not blank.
func (p CoursePatch) HasName() bool {
	return p.Name != nil && strings.TrimSpace(*p.Name) != ""
}

// Apply merges p into c. The id is never touched.
func (c Course) Apply(p CoursePatch) Course {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Name, p.Name)
	set(&c.Description, p.Description)
	set(&c.Duration, p.Duration)
	set(&c.Level, p.Level)
	set(&c.Category, p.Category)
	set(&c.Emoji, p.Emoji)
	return c
}

// Summary converts c to the catalog view rendered by the client.
func (c Course) Summary() CourseSummary {
	return CourseSummary{
		ID:          strconv.Itoa(int(c.ID)),
		Name:        c.Name,
		Description: c.Description,
		Duration:    c.Duration,
		Level:       c.Level,
		Category:    c.Category,
		Emoji:       c.Emoji,
	}
}

// LocalCourse is a record of the browser-persisted course mirror.
type LocalCourse struct {
	ID          string    `json:"id"`
	Name        string    `json:"nome"`
	Description string    `json:"descricao"`
	Duration    string    `json:"duracao"`
	Level       string    `json:"nivel"`
	Category    string    `json:"categoria"`
	Emoji       string    `json:"emoji"`
	CreatedAt   time.Time `json:"dataCriacao"`
}

// Summary converts c to the catalog view rendered by the client.
func (c LocalCourse) Summary() CourseSummary {
	return CourseSummary{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Duration:    c.Duration,
		Level:       c.Level,
		Category:    c.Category,
		Emoji:       c.Emoji,
	}
}

// CourseSummary is the source-independent course view.
type CourseSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Level       string `json:"level"`
	Category    string `json:"category"`
	Emoji       string `json:"emoji"`
}

// Enrollment is an entry of the "meusCursos" list.
type Enrollment struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Progress    int    `json:"progress"`
}
