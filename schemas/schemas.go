package schemas

import (
	"fmt"

	"github.com/folio-sh/folio/internal/domain"
)

// FieldKind describes how a schema field is typed at the storage boundary.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindText   FieldKind = "text"
	KindBool   FieldKind = "bool"
	KindInt    FieldKind = "int"
)

// Field is one typed slot in a collection schema.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
}

// Collection describes one named content collection: its field schema, the
// public paths that show it, and whether it is a singleton.
type Collection struct {
	Name      string
	Singleton bool
	Fields    []Field
	// Paths are the public page paths that go stale when the collection
	// mutates.
	Paths []string
}

const (
	Journals       = "journals"
	Conferences    = "conferences"
	Books          = "books"
	Patents        = "patents"
	Talks          = "talks"
	Certifications = "certifications"
	Awards         = "awards"
	Education      = "education"
	Experience     = "experience"
	Skills         = "skills"
	Projects       = "projects"
	Testimonials   = "testimonials"
	Navigation     = "navigation"
	Hero           = "hero"
	About          = "about"
	SiteSettings   = "site-settings"
)

var collections = map[string]Collection{
	Journals: {
		Name:  Journals,
		Paths: []string{"/", "/publications"},
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "authors", Kind: KindString, Required: true},
			{Name: "journal", Kind: KindString, Required: true},
			{Name: "year", Kind: KindString, Required: true},
			{Name: "doi", Kind: KindString},
			{Name: "url", Kind: KindString},
		},
	},
	Conferences: {
		Name:  Conferences,
		Paths: []string{"/", "/publications"},
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "authors", Kind: KindString, Required: true},
			{Name: "venue", Kind: KindString, Required: true},
			{Name: "year", Kind: KindString, Required: true},
			{Name: "url", Kind: KindString},
		},
	},
	Books: {
		Name:  Books,
		Paths: []string{"/", "/publications"},
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "authors", Kind: KindString, Required: true},
			{Name: "publisher", Kind: KindString, Required: true},
			{Name: "year", Kind: KindString, Required: true},
			{Name: "isbn", Kind: KindString},
		},
	},
	Patents: {
		Name:  Patents,
		Paths: []string{"/", "/publications"},
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "inventors", Kind: KindString, Required: true},
			{Name: "number", Kind: KindString, Required: true},
			{Name: "year", Kind: KindString, Required: true},
			{Name: "status", Kind: KindString},
		},
	},
	Talks: {
		Name:  Talks,
		Paths: []string{"/"},
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "event", Kind: KindString, Required: true},
			{Name: "date", Kind: KindString, Required: true},
			{Name: "location", Kind: KindString},
			{Name: "slidesUrl", Kind: KindString},
		},
	},
	Certifications: {
		Name:  Certifications,
		Paths: []string{"/"},
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "issuer", Kind: KindString, Required: true},
			{Name: "year", Kind: KindString, Required: true},
			{Name: "credentialUrl", Kind: KindString},
		},
	},
	Awards: {
		Name:  Awards,
		Paths: []string{"/"},
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "issuer", Kind: KindString, Required: true},
			{Name: "year", Kind: KindString, Required: true},
			{Name: "description", Kind: KindText},
		},
	},
	Education: {
		Name:  Education,
		Paths: []string{"/"},
		Fields: []Field{
			{Name: "degree", Kind: KindString, Required: true},
			{Name: "institution", Kind: KindString, Required: true},
			{Name: "startYear", Kind: KindString, Required: true},
			{Name: "endYear", Kind: KindString},
			{Name: "description", Kind: KindText},
		},
	},
	Experience: {
		Name:  Experience,
		Paths: []string{"/"},
		Fields: []Field{
			{Name: "role", Kind: KindString, Required: true},
			{Name: "organization", Kind: KindString, Required: true},
			{Name: "startDate", Kind: KindString, Required: true},
			{Name: "endDate", Kind: KindString},
			{Name: "summary", Kind: KindText},
		},
	},
	Skills: {
		Name:  Skills,
		Paths: []string{"/"},
		Fields: []Field{
			// items (the per-section skill list) rides the shared tags column.
			{Name: "title", Kind: KindString, Required: true},
			{Name: "icon", Kind: KindString},
		},
	},
	Projects: {
		Name:  Projects,
		Paths: []string{"/", "/projects"},
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "summary", Kind: KindText, Required: true},
			{Name: "url", Kind: KindString},
			{Name: "repoUrl", Kind: KindString},
			{Name: "imageUrl", Kind: KindString},
		},
	},
	Testimonials: {
		Name:  Testimonials,
		Paths: []string{"/"},
		Fields: []Field{
			{Name: "author", Kind: KindString, Required: true},
			{Name: "role", Kind: KindString},
			{Name: "quote", Kind: KindText, Required: true},
			{Name: "avatarUrl", Kind: KindString},
		},
	},
	Navigation: {
		Name:  Navigation,
		Paths: []string{"/"},
		Fields: []Field{
			{Name: "label", Kind: KindString, Required: true},
			{Name: "path", Kind: KindString, Required: true},
			{Name: "external", Kind: KindBool},
		},
	},
	Hero: {
		Name:      Hero,
		Singleton: true,
		Paths:     []string{"/"},
		Fields: []Field{
			{Name: "headline", Kind: KindString, Required: true},
			{Name: "subheadline", Kind: KindString},
			{Name: "ctaLabel", Kind: KindString},
			{Name: "ctaUrl", Kind: KindString},
			{Name: "imageUrl", Kind: KindString},
		},
	},
	About: {
		Name:      About,
		Singleton: true,
		Paths:     []string{"/"},
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "body", Kind: KindText, Required: true},
			{Name: "portraitUrl", Kind: KindString},
		},
	},
	SiteSettings: {
		Name:      SiteSettings,
		Singleton: true,
		Paths:     []string{"/"},
		Fields: []Field{
			{Name: "siteTitle", Kind: KindString, Required: true},
			{Name: "metaDescription", Kind: KindText},
			{Name: "footerText", Kind: KindString},
			{Name: "email", Kind: KindString},
			{Name: "githubUrl", Kind: KindString},
			{Name: "linkedinUrl", Kind: KindString},
		},
	},
}

// Lookup returns the schema for a collection name.
func Lookup(name string) (Collection, bool) {
	c, ok := collections[name]
	return c, ok
}

// Ordered lists every non-singleton collection name.
func Ordered() []string {
	return []string{
		Journals, Conferences, Books, Patents, Talks, Certifications,
		Awards, Education, Experience, Skills, Projects, Testimonials,
		Navigation,
	}
}

// Singletons lists every singleton collection name.
func Singletons() []string {
	return []string{Hero, About, SiteSettings}
}

// Validate checks fields against the collection schema. Unknown fields are
// rejected so typos never end up persisted silently.
func (c Collection) Validate(fields map[string]any) error {
	for _, f := range c.Fields {
		v, present := fields[f.Name]
		if !present {
			if f.Required {
				return domain.ValidationError{Field: f.Name, Reason: "required"}
			}
			continue
		}
		if err := checkKind(f, v); err != nil {
			return err
		}
	}
	for name := range fields {
		if !c.hasField(name) {
			return domain.ValidationError{Field: name, Reason: "unknown field"}
		}
	}
	return nil
}

func (c Collection) hasField(name string) bool {
	for _, f := range c.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func checkKind(f Field, v any) error {
	switch f.Kind {
	case KindString, KindText:
		s, ok := v.(string)
		if !ok {
			return domain.ValidationError{Field: f.Name, Reason: "must be a string"}
		}
		if f.Required && s == "" {
			return domain.ValidationError{Field: f.Name, Reason: "required"}
		}
	case KindBool:
		if _, ok := v.(bool); !ok {
			return domain.ValidationError{Field: f.Name, Reason: "must be a boolean"}
		}
	case KindInt:
		switch v.(type) {
		case int, int64, float64:
		default:
			return domain.ValidationError{Field: f.Name, Reason: "must be a number"}
		}
	default:
		return domain.ValidationError{Field: f.Name, Reason: fmt.Sprintf("unsupported kind %q", f.Kind)}
	}
	return nil
}
