// Package schemas validates request payloads before any store mutation.
// Each schema kind is an explicit rule table; validation collects every
// violation found in one pass and reports them as a single Bad Request.
package schemas

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/storyhub-app/storyhub-be/internal/apierror"
)

// Kind identifies which rule table a payload is validated against.
type Kind string

const (
	UserCreate  Kind = "user-create"
	UserUpdate  Kind = "user-update"
	Login       Kind = "login"
	StoryCreate Kind = "story-create"
	StoryUpdate Kind = "story-update"
)

// immutableFields may never be set directly by a client payload.
var immutableFields = map[string]bool{
	"username":  true,
	"favorites": true,
	"stories":   true,
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

type rules struct {
	object    string // "user" or "story", used in messages
	required  []string
	permitted map[string]bool
	// patterns maps a field name to its constraint; all payload fields are
	// strings, so the type check is shared.
	patterns map[string]*regexp.Regexp
}

var registry = map[Kind]rules{
	UserCreate: {
		object:    "user",
		required:  []string{"username", "password"},
		permitted: map[string]bool{"name": true, "username": true, "password": true},
		patterns:  map[string]*regexp.Regexp{"username": usernamePattern},
	},
	UserUpdate: {
		object:    "user",
		permitted: map[string]bool{"name": true, "password": true},
	},
	Login: {
		object:    "user",
		required:  []string{"username", "password"},
		permitted: map[string]bool{"username": true, "password": true},
	},
	StoryCreate: {
		object:    "story",
		required:  []string{"author", "title", "url"},
		permitted: map[string]bool{"author": true, "title": true, "url": true},
	},
	StoryUpdate: {
		object:    "story",
		permitted: map[string]bool{"author": true, "title": true, "url": true},
	},
}

// Validate checks payload against the rule table for kind. It returns nil on
// success or a Bad Request whose detail lists every violation, semicolon
// joined, so a request with several bad fields reports all of them at once.
func Validate(payload map[string]any, kind Kind) *apierror.Error {
	r, ok := registry[kind]
	if !ok {
		return apierror.BadRequest(fmt.Sprintf("Unknown schema kind '%s'.", kind))
	}

	var violations []string

	for _, field := range r.required {
		if _, present := payload[field]; !present {
			violations = append(violations,
				fmt.Sprintf("%s object requires property '%s'", titleCase(r.object), field))
		}
	}

	fields := make([]string, 0, len(payload))
	for field := range payload {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if !r.permitted[field] {
			if immutableFields[field] {
				violations = append(violations,
					fmt.Sprintf("The property '%s' is immutable at this endpoint", field))
			} else {
				violations = append(violations,
					fmt.Sprintf("The property '%s' is not valid for %s objects", field, r.object))
			}
			continue
		}

		value, isString := payload[field].(string)
		if !isString {
			violations = append(violations,
				fmt.Sprintf("The '%s' property must be a string", field))
			continue
		}

		if pattern, constrained := r.patterns[field]; constrained && !pattern.MatchString(value) {
			violations = append(violations,
				fmt.Sprintf("The '%s' property only supports letters and numbers", field))
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return apierror.BadRequest(strings.Join(violations, "; ") + ".")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
