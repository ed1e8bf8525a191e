// Package scrape reads scraper output from disk into a Batch ready for
// import. A scrape directory holds one file per entity type, each a list of
// records; missing files simply mean the run scraped none of that type.
// Files are YAML, which covers scrapers that emit JSON as well.
package scrape

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/civimap/civimport/pkg/errors"
	"github.com/civimap/civimport/pkg/importers"
)

// The per-type file names looked for in a scrape directory. For each name
// both .yaml and .json extensions are accepted.
const (
	OrganizationsFile = "organizations"
	PeopleFile        = "people"
	MembershipsFile   = "memberships"
	BillsFile         = "bills"
	VoteEventsFile    = "vote_events"
)

// LoadDir reads a scrape directory into a Batch.
func LoadDir(dir string) (*importers.Batch, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.WrapIO("stat", dir, err)
	}
	if !info.IsDir() {
		return nil, errors.New("scrape path is not a directory: " + dir)
	}

	batch := &importers.Batch{}
	if err := loadList(dir, OrganizationsFile, &batch.Organizations); err != nil {
		return nil, err
	}
	if err := loadList(dir, PeopleFile, &batch.People); err != nil {
		return nil, err
	}
	if err := loadList(dir, MembershipsFile, &batch.Memberships); err != nil {
		return nil, err
	}
	if err := loadList(dir, BillsFile, &batch.Bills); err != nil {
		return nil, err
	}
	if err := loadList(dir, VoteEventsFile, &batch.VoteEvents); err != nil {
		return nil, err
	}
	return batch, nil
}

// LoadFile reads a single file holding a whole Batch, keyed by entity type.
func LoadFile(path string) (*importers.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	batch := &importers.Batch{}
	if err := yaml.Unmarshal(data, batch); err != nil {
		return nil, errors.WrapParse(formatOf(path), path, err)
	}
	return batch, nil
}

// Load reads either a batch file or a scrape directory, depending on what
// the path points at.
func Load(path string) (*importers.Batch, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapIO("stat", path, err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// loadList reads one per-type file into out. A missing file is not an
// error; an empty file yields an empty list.
func loadList[T any](dir, name string, out *[]T) error {
	path, ok := findFile(dir, name)
	if !ok {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapIO("read", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.WrapParse(formatOf(path), path, err)
	}
	return nil
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

func findFile(dir, name string) (string, bool) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
