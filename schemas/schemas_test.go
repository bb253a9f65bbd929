package schemas

import (
	"errors"
	"testing"

	"github.com/folio-sh/folio/internal/domain"
)

func TestLookupKnowsEveryRegisteredName(t *testing.T) {
	for _, name := range Ordered() {
		c, ok := Lookup(name)
		if !ok {
			t.Fatalf("collection %s missing from registry", name)
		}
		if c.Singleton {
			t.Fatalf("collection %s should not be a singleton", name)
		}
	}
	for _, name := range Singletons() {
		c, ok := Lookup(name)
		if !ok {
			t.Fatalf("singleton %s missing from registry", name)
		}
		if !c.Singleton {
			t.Fatalf("collection %s should be a singleton", name)
		}
	}
	if _, ok := Lookup("bogus"); ok {
		t.Fatalf("unknown collection should not resolve")
	}
}

func TestValidateRequiredField(t *testing.T) {
	c, _ := Lookup(Journals)

	err := c.Validate(map[string]any{
		"title":   "Paper",
		"authors": "A. Author",
		"journal": "Nature",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing year, got %v", err)
	}

	err = c.Validate(map[string]any{
		"title":   "Paper",
		"authors": "A. Author",
		"journal": "Nature",
		"year":    "2024",
	})
	if err != nil {
		t.Fatalf("expected valid payload to pass, got %v", err)
	}
}

func TestValidateRejectsUnknownField(t *testing.T) {
	c, _ := Lookup(Talks)

	err := c.Validate(map[string]any{
		"title": "Keynote",
		"event": "GopherCon",
		"date":  "2025-07-01",
		"venue": "nope",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected unknown field rejection, got %v", err)
	}
}

func TestValidateKinds(t *testing.T) {
	c, _ := Lookup(Navigation)

	err := c.Validate(map[string]any{
		"label":    "Blog",
		"path":     "/blog",
		"external": "true",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected string-for-bool rejection, got %v", err)
	}

	err = c.Validate(map[string]any{
		"label":    "Blog",
		"path":     "/blog",
		"external": true,
	})
	if err != nil {
		t.Fatalf("expected typed bool to pass, got %v", err)
	}

	err = c.Validate(map[string]any{
		"label": 42,
		"path":  "/blog",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected non-string label rejection, got %v", err)
	}
}

func TestValidateRequiredEmptyString(t *testing.T) {
	c, _ := Lookup(Projects)

	err := c.Validate(map[string]any{
		"title":   "",
		"summary": "something",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected empty required string rejection, got %v", err)
	}
}
