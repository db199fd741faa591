package prompt

import (
	"strings"
	"testing"
)

func TestRender_SimpleVars(t *testing.T) {
	tmpl := "You are {{persona}}. The talk lasted {{minutes}} minutes."
	vars := Vars{
		"persona": "a venture capitalist",
		"minutes": "12",
	}

	result, err := Render(tmpl, vars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "You are a venture capitalist. The talk lasted 12 minutes."
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestRender_MissingVar(t *testing.T) {
	tmpl := "Transcript: {{transcript}} Persona: {{persona}}."
	vars := Vars{
		"transcript": "hello",
	}

	_, err := Render(tmpl, vars)
	if err == nil {
		t.Fatal("expected error for missing variable")
	}
	if !strings.Contains(err.Error(), "persona") {
		t.Errorf("error should mention missing variable, got: %v", err)
	}
}

func TestRender_ConditionalIncluded(t *testing.T) {
	tmpl := "Review.{{#if history}} Previous: {{history}}.{{/if}} End."
	result, err := Render(tmpl, Vars{"history": "two runs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "Review. Previous: two runs. End." {
		t.Errorf("got %q", result)
	}
}

func TestRender_ConditionalExcluded(t *testing.T) {
	tmpl := "Review.{{#if history}} Previous: {{history}}.{{/if}} End."
	result, err := Render(tmpl, Vars{"history": ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "Review. End." {
		t.Errorf("got %q", result)
	}
}

func TestRender_DanglingClose(t *testing.T) {
	_, err := Render("text {{/if}} more", Vars{})
	if err == nil {
		t.Fatal("expected error for dangling {{/if}}")
	}
}

func TestRender_UnclosedConditional(t *testing.T) {
	_, err := Render("text {{#if x}} more", Vars{"x": "1"})
	if err == nil {
		t.Fatal("expected error for unclosed conditional")
	}
}

func TestBuild_KnownTemplates(t *testing.T) {
	cases := []struct {
		name string
		vars Vars
		want string // substring the rendered prompt must contain
	}{
		{"structure", Vars{"transcript": "the talk"}, "the talk"},
		{"persona", Vars{"persona": "an investor", "transcript": "t"}, "an investor"},
		{"comparison", Vars{"history": "run 1", "transcript": "t"}, "run 1"},
		{"aggregate", Vars{
			"structure": "a", "speech": "b", "knowledge": "c",
			"personas": "d", "comparison": "e",
		}, "1-5 integer scale"},
		{"transcript_cleanup", Vars{"transcript": "um, so"}, "um, so"},
	}
	for _, tc := range cases {
		got, err := Build(tc.name, tc.vars)
		if err != nil {
			t.Fatalf("Build(%q) error: %v", tc.name, err)
		}
		if !strings.Contains(got, tc.want) {
			t.Errorf("Build(%q) missing %q", tc.name, tc.want)
		}
	}
}

func TestBuild_UnknownTemplate(t *testing.T) {
	_, err := Build("no_such_prompt", Vars{})
	if err == nil {
		t.Fatal("expected error for unknown template")
	}
}
