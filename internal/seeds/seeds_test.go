package seeds

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeeds(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "narratives.seed.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write seeds: %v", err)
	}
	return path
}

func TestLoadNormalizes(t *testing.T) {
	path := writeSeeds(t, `{"narratives":[
		{"name":"  dogs  ","terms":["dog","wif"],"block":["scam"]},
		{"name":"","terms":["dropped"]},
		{"name":"ai","terms":["ai","agent"],"allowNameMatch":false,"requireAllTerms":true,"cap":10}
	]}`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	all := s.All()
	if len(all) != 2 {
		t.Fatalf("empty-named entry must be skipped, got %d", len(all))
	}
	if all[0].Name != "dogs" {
		t.Fatalf("name must be trimmed: %q", all[0].Name)
	}
	if !all[0].AllowNameMatch {
		t.Fatal("allowNameMatch must default to true")
	}
	if all[1].AllowNameMatch || !all[1].RequireAllTerms || all[1].Cap != 10 {
		t.Fatalf("explicit fields not carried: %+v", all[1])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("missing file must error")
	}
}

func TestLoadBadJSON(t *testing.T) {
	path := writeSeeds(t, `{"narratives":[`)
	if _, err := Load(path); err == nil {
		t.Fatal("malformed file must error")
	}
}

func TestGetCaseInsensitive(t *testing.T) {
	path := writeSeeds(t, `{"narratives":[{"name":"Dogs","terms":["dog"]}]}`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := s.Get("dogs"); !ok {
		t.Fatal("lookup must be case-insensitive")
	}
	if _, ok := s.Get("cats"); ok {
		t.Fatal("unknown narrative must miss")
	}
}

func TestReloadKeepsOldSetOnFailure(t *testing.T) {
	path := writeSeeds(t, `{"narratives":[{"name":"dogs","terms":["dog"]}]}`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := s.Reload(); err == nil {
		t.Fatal("reload of a broken file must error")
	}
	if names := s.Names(); len(names) != 1 || names[0] != "dogs" {
		t.Fatalf("previous set must survive a failed reload: %v", names)
	}
}
