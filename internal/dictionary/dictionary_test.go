package dictionary

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestDefaultDictionary(t *testing.T) {
	d := Default()

	skills := d.Skills()
	if len(skills) == 0 {
		t.Fatalf("expected embedded skills")
	}

	if skills[0].Category != Technical {
		t.Fatalf("expected technical skills first, got %q", skills[0].Category)
	}

	js, ok := d.Lookup("JavaScript")
	if !ok {
		t.Fatalf("expected javascript in default dictionary")
	}
	if !slices.Contains(js.Aliases, "ecmascript") {
		t.Fatalf("expected ecmascript alias, got %v", js.Aliases)
	}
	// "js" would match inside "json"
	if slices.Contains(js.Aliases, "js") {
		t.Fatalf("did not expect js among substring aliases, got %v", js.Aliases)
	}

	leadership, ok := d.Lookup("leadership")
	if !ok || leadership.Category != Soft {
		t.Fatalf("expected leadership to be a soft skill, got %+v", leadership)
	}

	if !d.IsStopword("The") {
		t.Fatalf("expected 'the' to be a stopword")
	}
	if d.IsStopword("kubernetes") {
		t.Fatalf("did not expect kubernetes to be a stopword")
	}
}

func TestSynonyms(t *testing.T) {
	d := Default()

	group := d.Synonyms("JS")
	for _, want := range []string{"javascript", "js", "node.js"} {
		if !slices.Contains(group, want) {
			t.Fatalf("expected %q in synonyms of js, got %v", want, group)
		}
	}

	if got := d.Synonyms("cobol"); !slices.Equal(got, []string{"cobol"}) {
		t.Fatalf("expected unknown term to map to itself, got %v", got)
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]Skill{{Name: "Go"}, {Name: " go "}}, nil, nil)
	if err == nil {
		t.Fatal("expected duplicate skill error")
	}

	if _, err := New(nil, nil, nil); err == nil {
		t.Fatal("expected error for empty dictionary")
	}
}

func TestNewNormalizesEntries(t *testing.T) {
	d, err := New([]Skill{{Name: " Kafka ", Aliases: []string{"KAFKA", "Event Streaming", ""}}}, [][]string{{"Kafka", "event streaming"}}, []string{" And "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	kafka, ok := d.Lookup("kafka")
	if !ok {
		t.Fatalf("expected kafka")
	}
	if kafka.Category != Technical {
		t.Fatalf("expected default category technical, got %q", kafka.Category)
	}
	if !slices.Equal(kafka.Aliases, []string{"event streaming"}) {
		t.Fatalf("unexpected aliases: %v", kafka.Aliases)
	}
	if !d.IsStopword("and") {
		t.Fatalf("expected stopword to be normalized")
	}
	if got := d.Synonyms("Event Streaming"); !slices.Equal(got, []string{"kafka", "event streaming"}) {
		t.Fatalf("unexpected synonyms: %v", got)
	}
}

func TestSkillsReturnsCopy(t *testing.T) {
	d := Default()
	skills := d.Skills()
	skills[0].Name = "mutated"

	if d.Skills()[0].Name == "mutated" {
		t.Fatalf("expected Skills to return a copy")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.yaml")
	content := []byte(`
skills:
  technical:
    - name: elixir
      aliases: [phoenix]
  soft:
    - name: empathy
synonyms:
  - [elixir, phoenix]
stopwords: [the]
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(d.Skills()) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(d.Skills()))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFold(t *testing.T) {
	tests := map[string]string{
		"Café CRÈME": "cafe creme",
		"Node.JS":    "node.js",
		"":           "",
	}

	for in, want := range tests {
		if got := Fold(in); got != want {
			t.Fatalf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}
