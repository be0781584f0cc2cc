package models

import "time"

// SiteTexts is the nested site copy served from texts.json.
type SiteTexts struct {
	Site struct {
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
	} `json:"site"`
	Sections struct {
		About   TextSection    `json:"about"`
		Contact ContactSection `json:"contact"`
		Video   TextSection    `json:"video"`
	} `json:"sections"`
}

type TextSection struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

type ContactSection struct {
	Title string `json:"title"`
	Form  struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
		Submit  string `json:"submit"`
	} `json:"form"`
}

// SchoolInfo is served from school-info.json.
type SchoolInfo struct {
	Name    string `json:"name"`
	Slogan  string `json:"slogan,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Logo    Logo   `json:"logo"`
}

// Logo describes the school logo asset.
type Logo struct {
	Filename string `json:"filename,omitempty"`
	Alt      string `json:"alt,omitempty"`
}

// SiteConfig holds the environment flags served from config.json.
type SiteConfig struct {
	Environment string          `json:"environment"`
	Features    map[string]bool `json:"features,omitempty"`
}

// ContentBundle is the snapshot fetched for one page render.
type ContentBundle struct {
	Texts      SiteTexts     `json:"texts"`
	SchoolInfo SchoolInfo    `json:"schoolInfo"`
	Courses    CourseCatalog `json:"courses"`
	Config     SiteConfig    `json:"config"`
}

// Asset is an entry of an image or video listing.
type Asset struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Path     string `json:"path"`
}

// ContactMessage is a submission of the contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	Message   string    `json:"mensagem"`
	CreatedAt time.Time `json:"dataCriacao"`
}
