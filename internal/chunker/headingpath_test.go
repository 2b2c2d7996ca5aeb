package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadingPathPush(t *testing.T) {
	tests := []struct {
		name   string
		pushes []HeadingEntry
		want   []string
	}{
		{
			name:   "single root",
			pushes: []HeadingEntry{{1, "Ch 1"}},
			want:   []string{"Ch 1"},
		},
		{
			name:   "descending levels nest",
			pushes: []HeadingEntry{{1, "Ch 1"}, {2, "Sec 1.1"}, {3, "Sub 1.1.1"}},
			want:   []string{"Ch 1", "Sec 1.1", "Sub 1.1.1"},
		},
		{
			name:   "sibling replaces same level",
			pushes: []HeadingEntry{{1, "Ch 1"}, {2, "Sec 1.1"}, {2, "Sec 1.2"}},
			want:   []string{"Ch 1", "Sec 1.2"},
		},
		{
			name:   "shallower heading pops deeper entries",
			pushes: []HeadingEntry{{1, "Ch 1"}, {2, "Sec 1.1"}, {3, "Sub 1.1.1"}, {2, "Sec 1.2"}},
			want:   []string{"Ch 1", "Sec 1.2"},
		},
		{
			name:   "new root resets everything",
			pushes: []HeadingEntry{{1, "Ch 1"}, {2, "Sec 1.1"}, {1, "Ch 2"}},
			want:   []string{"Ch 2"},
		},
		{
			name:   "skipped levels are fine",
			pushes: []HeadingEntry{{1, "Ch 1"}, {4, "Deep"}},
			want:   []string{"Ch 1", "Deep"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p HeadingPath
			for _, e := range tt.pushes {
				p = p.Push(e.Level, e.Heading)
			}
			assert.Equal(t, tt.want, p.Strings())
		})
	}
}

func TestHeadingPathString(t *testing.T) {
	var p HeadingPath
	assert.Equal(t, "", p.String())

	p = p.Push(1, "Kinematics").Push(2, "Forward Kinematics")
	assert.Equal(t, "Kinematics > Forward Kinematics", p.String())
}

func TestHeadingPathCloneIsIndependent(t *testing.T) {
	p := HeadingPath{}.Push(1, "Ch 1").Push(2, "Sec 1.1")
	snapshot := p.Clone()

	p = p.Push(2, "Sec 1.2")

	assert.Equal(t, []string{"Ch 1", "Sec 1.1"}, snapshot.Strings())
	assert.Equal(t, []string{"Ch 1", "Sec 1.2"}, p.Strings())
}
