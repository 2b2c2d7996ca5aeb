package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionValidate(t *testing.T) {
	tests := []struct {
		name    string
		section Section
		wantErr bool
	}{
		{"valid", Section{Heading: "Intro", Level: 1}, false},
		{"deepest level", Section{Heading: "Sub", Level: 6}, false},
		{"missing heading", Section{Level: 1}, true},
		{"level zero", Section{Heading: "Intro", Level: 0}, true},
		{"level too deep", Section{Heading: "Intro", Level: 7}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.section.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSection)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDocumentValidate(t *testing.T) {
	valid := &Document{
		Title: "Kinematics",
		Sections: []Section{
			{Heading: "Intro", Level: 1, Content: "text"},
		},
	}
	assert.NoError(t, valid.Validate())

	assert.NoError(t, (&Document{FilePath: "a.json"}).Validate())

	assert.ErrorIs(t, (&Document{}).Validate(), ErrEmptyDocument)

	badSection := &Document{
		Title:    "T",
		Sections: []Section{{Heading: "", Level: 1}},
	}
	assert.ErrorIs(t, badSection.Validate(), ErrInvalidSection)
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleDoc = `{
  "file_path": "content/kinematics.md",
  "title": "Kinematics",
  "chapter": "kinematics",
  "description": "Robot kinematics",
  "keywords": ["kinematics", "robotics"],
  "url_path": "/book/kinematics",
  "sections": [
    {"heading": "Overview", "level": 1, "content": "intro text", "line_start": 1, "line_end": 10},
    {"heading": "Forward Kinematics", "level": 2, "content": "body text", "line_start": 11, "line_end": 40}
  ]
}`

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "kinematics.json", sampleDoc)

	doc, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "content/kinematics.md", doc.FilePath)
	assert.Equal(t, "Kinematics", doc.Title)
	assert.Equal(t, "kinematics", doc.Chapter)
	assert.Equal(t, []string{"kinematics", "robotics"}, doc.Keywords)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "Forward Kinematics", doc.Sections[1].Heading)
	assert.Equal(t, 2, doc.Sections[1].Level)
	assert.Equal(t, 11, doc.Sections[1].LineStart)
}

func TestLoadFileFallsBackToPath(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "untitled.json", `{"title": "T", "sections": []}`)

	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.FilePath)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := writeDoc(t, dir, "bad.json", "{not json")
	_, err = LoadFile(bad)
	assert.Error(t, err)

	invalid := writeDoc(t, dir, "invalid.json", `{"title": "T", "sections": [{"heading": "", "level": 1}]}`)
	_, err = LoadFile(invalid)
	assert.ErrorIs(t, err, ErrInvalidSection)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "b.json", `{"title": "B", "sections": []}`)
	writeDoc(t, dir, "a.json", `{"title": "A", "sections": []}`)
	writeDoc(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Lexical order keeps repeated runs deterministic.
	assert.Equal(t, "A", docs[0].Title)
	assert.Equal(t, "B", docs[1].Title)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
