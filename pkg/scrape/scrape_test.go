package scrape

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civimap/civimport/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "organizations.yaml", `
- _id: org-1
  name: House
  classification: lower
- _id: org-2
  name: Senate
  classification: upper
`)
	writeFile(t, dir, "people.yaml", `
- _id: person-1
  name: Jane Smith
  other_names:
    - J. Smith
`)
	writeFile(t, dir, "memberships.yaml", `
- _id: mem-1
  person_id: person-1
  organization_id: org-1
`)
	writeFile(t, dir, "bills.yaml", `
- _id: bill-1
  legislative_session: "1900"
  identifier: HB 1
  actions:
    - description: introduced
      date: "1900-01-01"
      chamber: lower
      order: 0
`)
	writeFile(t, dir, "vote_events.yaml", `
- _id: vote-1
  legislative_session: "1900"
  identifier: RC 1
  start_date: "1900-04-01"
  result: pass
  bill_id: bill-1
  organization_id: org-1
  counts:
    - option: "yes"
      value: 20
`)

	batch, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, batch.Organizations, 2)
	assert.Equal(t, "org-1", batch.Organizations[0].TransientID)
	assert.Equal(t, "lower", batch.Organizations[0].Classification)
	require.Len(t, batch.People, 1)
	assert.Equal(t, []string{"J. Smith"}, batch.People[0].OtherNames)
	require.Len(t, batch.Memberships, 1)
	require.Len(t, batch.Bills, 1)
	require.Len(t, batch.Bills[0].Actions, 1)
	require.Len(t, batch.VoteEvents, 1)
	assert.Equal(t, 20, batch.VoteEvents[0].Counts[0].Value)
}

// TestLoadDirMissingFiles verifies missing per-type files mean empty lists,
// not errors.
func TestLoadDirMissingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bills.yaml", `
- _id: bill-1
  legislative_session: "1900"
  identifier: HB 1
`)

	batch, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, batch.Organizations)
	assert.Empty(t, batch.People)
	assert.Len(t, batch.Bills, 1)
}

func TestLoadDirJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "organizations.json",
		`[{"_id": "org-1", "name": "House", "classification": "lower"}]`)

	batch, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, batch.Organizations, 1)
	assert.Equal(t, "House", batch.Organizations[0].Name)
}

func TestLoadDirEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "people.yaml", "\n")

	batch, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, batch.People)
}

func TestLoadDirBadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "organizations.yaml", "{broken")

	_, err := LoadDir(dir)
	require.Error(t, err)
	var parseErr *errors.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "batch.yaml", `
organizations:
  - _id: org-1
    name: House
    classification: lower
bills:
  - _id: bill-1
    legislative_session: "1900"
    identifier: HB 1
`)

	batch, err := LoadFile(filepath.Join(dir, "batch.yaml"))
	require.NoError(t, err)
	assert.Len(t, batch.Organizations, 1)
	assert.Len(t, batch.Bills, 1)
}

// TestLoad dispatches on what the path points at.
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "organizations.yaml", `
- _id: org-1
  name: House
  classification: lower
`)

	fromDir, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, fromDir.Organizations, 1)

	writeFile(t, dir, "batch.yaml", "organizations:\n  - _id: org-2\n    name: Senate\n    classification: upper\n")
	fromFile, err := Load(filepath.Join(dir, "batch.yaml"))
	require.NoError(t, err)
	assert.Len(t, fromFile.Organizations, 1)

	_, err = Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))
}
