// internal/schema/schema.go

// Package schema projects free-form merged records onto a fixed nested output
// shape. The template is process-wide immutable configuration; every mapping
// operates on a fresh deep copy so templates are never mutated across records.
package schema

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is a deeply-nested mapping of field path to default value (empty
// string, empty list, or empty nested object).
type Template map[string]interface{}

// AliasTable maps a dot-delimited schema path (e.g. "profile.bio") to an
// ordered list of acceptable source field names. The first present, non-empty
// candidate wins.
type AliasTable map[string][]string

// DefaultTemplate returns the built-in lead schema.
func DefaultTemplate() Template {
	return Template{
		"platform": "",
		"url":      "",
		"profile": map[string]interface{}{
			"username":  "",
			"full_name": "",
			"bio":       "",
			"followers": int64(0),
			"following": int64(0),
		},
		"contact": map[string]interface{}{
			"emails":        []string{},
			"phone_numbers": []string{},
			"websites":      []string{},
		},
		"content": map[string]interface{}{
			"latest_post": "",
			"hashtags":    []string{},
		},
		"scraped_at": int64(0),
		"error":      "",
	}
}

// DefaultAliasTable returns the built-in alias table for Twitter/X records.
func DefaultAliasTable() AliasTable {
	return AliasTable{
		"platform":              {"platform"},
		"url":                   {"twitter_link", "url"},
		"profile.username":      {"handle", "username"},
		"profile.full_name":     {"name", "full_name"},
		"profile.bio":           {"bio"},
		"profile.followers":     {"followers_num"},
		"profile.following":     {"following_num"},
		"contact.emails":        {"emails"},
		"contact.phone_numbers": {"phones", "phone_numbers"},
		"contact.websites":      {"external_links"},
		"content.latest_post":   {"main_tweet_text"},
		"content.hashtags":      {"hashtags"},
		"scraped_at":            {"scraped_at"},
		"error":                 {"error"},
	}
}

// LoadTemplate reads a template from a YAML or JSON file.
func LoadTemplate(filename string) (Template, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if len(tmpl) == 0 {
		return nil, fmt.Errorf("template file %s is empty", filename)
	}

	return tmpl, nil
}

// DeepCopy returns a fresh copy sharing no mutable state with the receiver.
func (t Template) DeepCopy() Template {
	return Template(copyValue(map[string]interface{}(t)).(map[string]interface{}))
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return val
	}
}

// Validate checks that every alias path resolves to a leaf in the template.
// A dangling path is a configuration error and must fail at startup, not
// per-record.
func (a AliasTable) Validate(tmpl Template) error {
	paths := make([]string, 0, len(a))
	for path := range a {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if len(a[path]) == 0 {
			return fmt.Errorf("alias path %q has no source candidates", path)
		}
		if _, _, err := resolve(tmpl, path); err != nil {
			return fmt.Errorf("alias path %q does not resolve in template: %w", path, err)
		}
	}
	return nil
}

// resolve walks tmpl down to the parent of the path's final segment. It never
// creates keys.
func resolve(tmpl Template, path string) (map[string]interface{}, string, error) {
	parts := strings.Split(path, ".")
	current := map[string]interface{}(tmpl)

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			return nil, "", fmt.Errorf("missing segment %q", part)
		}
		nested, ok := next.(map[string]interface{})
		if !ok {
			return nil, "", fmt.Errorf("segment %q is not a nested object", part)
		}
		current = nested
	}

	leaf := parts[len(parts)-1]
	if _, ok := current[leaf]; !ok {
		return nil, "", fmt.Errorf("missing leaf %q", leaf)
	}
	return current, leaf, nil
}

// MapRecord projects a merged record onto a deep copy of the template. For
// each alias path the first present, non-empty source candidate is written;
// paths with no matching candidate keep the template default. The alias table
// must have been validated against the template beforehand.
func MapRecord(record map[string]interface{}, tmpl Template, alias AliasTable) Template {
	mapped := tmpl.DeepCopy()

	for path, candidates := range alias {
		parent, leaf, err := resolve(mapped, path)
		if err != nil {
			// Validate catches this at startup; skipping keeps mapping
			// total if a caller bypassed validation.
			continue
		}

		for _, key := range candidates {
			value, ok := record[key]
			if !ok || isEmpty(value) {
				continue
			}
			parent[leaf] = value
			break
		}
	}

	return mapped
}

// isEmpty reports whether a source value counts as absent for mapping.
func isEmpty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	default:
		return false
	}
}
