// internal/schema/schema_test.go
package schema

import (
	"reflect"
	"testing"
)

func TestDefaultAliasTableResolves(t *testing.T) {
	if err := DefaultAliasTable().Validate(DefaultTemplate()); err != nil {
		t.Fatalf("default alias table must resolve in default template: %v", err)
	}
}

func TestAliasTableValidateFailsFast(t *testing.T) {
	tests := []struct {
		name  string
		alias AliasTable
	}{
		{
			name:  "missing leaf",
			alias: AliasTable{"profile.nonexistent": {"bio"}},
		},
		{
			name:  "missing intermediate segment",
			alias: AliasTable{"nothing.here": {"bio"}},
		},
		{
			name:  "path through a leaf",
			alias: AliasTable{"url.deeper": {"bio"}},
		},
		{
			name:  "no candidates",
			alias: AliasTable{"profile.bio": {}},
		},
	}

	tmpl := DefaultTemplate()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.alias.Validate(tmpl); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestMapRecordFirstCandidateWins(t *testing.T) {
	record := map[string]interface{}{
		"twitter_link": "https://x.com/alice",
		"url":          "https://example.com/ignored",
		"handle":       "@alice",
		"bio":          "Gopher",
	}

	mapped := MapRecord(record, DefaultTemplate(), DefaultAliasTable())

	if mapped["url"] != "https://x.com/alice" {
		t.Errorf("url = %v, want twitter_link candidate to win", mapped["url"])
	}

	profile := mapped["profile"].(map[string]interface{})
	if profile["username"] != "@alice" {
		t.Errorf("username = %v, want @alice", profile["username"])
	}
	if profile["bio"] != "Gopher" {
		t.Errorf("bio = %v, want Gopher", profile["bio"])
	}
}

func TestMapRecordMissingFieldKeepsDefault(t *testing.T) {
	record := map[string]interface{}{
		"twitter_link": "https://x.com/alice",
	}

	mapped := MapRecord(record, DefaultTemplate(), DefaultAliasTable())

	profile := mapped["profile"].(map[string]interface{})
	if profile["bio"] != "" {
		t.Errorf("bio = %v, want template default empty string", profile["bio"])
	}

	contact := mapped["contact"].(map[string]interface{})
	emails, ok := contact["emails"].([]string)
	if !ok || len(emails) != 0 {
		t.Errorf("emails = %v, want template default empty list", contact["emails"])
	}
}

func TestMapRecordSkipsEmptyValues(t *testing.T) {
	record := map[string]interface{}{
		"twitter_link": "https://x.com/alice",
		"bio":          "",
		"name":         nil,
		"emails":       []string{},
	}

	mapped := MapRecord(record, DefaultTemplate(), DefaultAliasTable())

	profile := mapped["profile"].(map[string]interface{})
	if profile["bio"] != "" || profile["full_name"] != "" {
		t.Errorf("empty source values must not overwrite defaults: %v", profile)
	}
}

func TestMapRecordDoesNotMutateTemplate(t *testing.T) {
	tmpl := DefaultTemplate()
	alias := DefaultAliasTable()

	first := MapRecord(map[string]interface{}{
		"twitter_link": "https://x.com/alice",
		"bio":          "first bio",
		"emails":       []string{"a@x.com"},
	}, tmpl, alias)

	second := MapRecord(map[string]interface{}{
		"twitter_link": "https://x.com/bob",
	}, tmpl, alias)

	if first["url"] == second["url"] {
		t.Error("records must not share state")
	}

	profile := second["profile"].(map[string]interface{})
	if profile["bio"] != "" {
		t.Errorf("template leaked state across records: bio = %v", profile["bio"])
	}

	origProfile := tmpl["profile"].(map[string]interface{})
	if origProfile["bio"] != "" {
		t.Errorf("template itself was mutated: bio = %v", origProfile["bio"])
	}
}

func TestDeepCopyIsolation(t *testing.T) {
	tmpl := DefaultTemplate()
	cp := tmpl.DeepCopy()

	cp["platform"] = "mutated"
	cpProfile := cp["profile"].(map[string]interface{})
	cpProfile["bio"] = "mutated"

	if tmpl["platform"] != "" {
		t.Error("top-level mutation leaked into original")
	}
	origProfile := tmpl["profile"].(map[string]interface{})
	if origProfile["bio"] != "" {
		t.Error("nested mutation leaked into original")
	}

	if !reflect.DeepEqual(tmpl, DefaultTemplate()) {
		t.Error("original template no longer matches pristine default")
	}
}
