package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDiscoverPersonsReadsEntityField(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"medilog_person_bob.json":   `{"entity":"person.bob","records":[]}`,
		"medilog_person_alice.json": `{"entity":"person.alice","records":[]}`,
		"medications.json":          `{"medications":[]}`,
		"medilog_broken.json":       `{not json`,
		"unrelated.txt":             "ignore me",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	persons, err := discoverPersons(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	want := []string{"person.alice", "person.bob"}
	if !reflect.DeepEqual(persons, want) {
		t.Fatalf("persons = %v, want %v", persons, want)
	}
}

func TestDiscoverPersonsEmptyDir(t *testing.T) {
	persons, err := discoverPersons(t.TempDir())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(persons) != 0 {
		t.Fatalf("persons = %v, want none", persons)
	}
}

func TestSplitPersons(t *testing.T) {
	got := splitPersons(" person.alice, ,person.bob ")
	want := []string{"person.alice", "person.bob"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitPersons = %v, want %v", got, want)
	}
	if splitPersons("") != nil {
		t.Fatal("empty input should yield nil")
	}
}

func TestResolveDataDirPrecedence(t *testing.T) {
	t.Setenv("MEDILOG_DATA_DIR", "/env/dir")

	dataDir = "/flag/dir"
	defer func() { dataDir = "" }()
	if got := resolveDataDir(); got != "/flag/dir" {
		t.Fatalf("flag should win, got %s", got)
	}

	dataDir = ""
	if got := resolveDataDir(); got != "/env/dir" {
		t.Fatalf("env should win over default, got %s", got)
	}

	t.Setenv("MEDILOG_DATA_DIR", "")
	if got := resolveDataDir(); got != "." {
		t.Fatalf("default should be current dir, got %s", got)
	}
}
