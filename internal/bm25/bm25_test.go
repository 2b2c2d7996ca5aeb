package bm25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and splits",
			text: "Inverse Kinematics",
			want: []string{"inverse", "kinematics"},
		},
		{
			name: "punctuation becomes whitespace",
			text: "end-effector pose, (x, y, z)",
			want: []string{"end", "effector", "pose", "x", "y", "z"},
		},
		{
			name: "underscores survive",
			text: "joint_angle limits",
			want: []string{"joint_angle", "limits"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
		{
			name: "only punctuation",
			text: "!!! ... ???",
			want: []string{},
		},
		{
			name: "digits kept",
			text: "dof6 robot 42",
			want: []string{"dof6", "robot", "42"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			assert.ElementsMatch(t, tt.want, got)
			assert.Equal(t, len(tt.want), len(got))
		})
	}
}

func TestNewScorerDefaults(t *testing.T) {
	s := NewScorer(0, 0)
	assert.Equal(t, DefaultK1, s.k1)
	assert.Equal(t, DefaultB, s.b)

	s = NewScorer(1.2, 0.5)
	assert.Equal(t, 1.2, s.k1)
	assert.Equal(t, 0.5, s.b)
}

func TestScoreEmptyCorpus(t *testing.T) {
	s := NewScorer(DefaultK1, DefaultB)
	scores := s.Score("anything", nil)
	assert.Empty(t, scores)
}

func TestScoreEmptyQuery(t *testing.T) {
	s := NewScorer(DefaultK1, DefaultB)
	docs := []Doc{
		{ID: "a", Text: "forward kinematics"},
		{ID: "b", Text: "inverse kinematics"},
	}

	for _, query := range []string{"", "   ", "?!."} {
		scores := s.Score(query, docs)
		require.Len(t, scores, 2)
		// Corpus order preserved, all zeros.
		assert.Equal(t, "a", scores[0].ID)
		assert.Equal(t, "b", scores[1].ID)
		assert.Zero(t, scores[0].Score)
		assert.Zero(t, scores[1].Score)
	}
}

func TestScoreRanking(t *testing.T) {
	s := NewScorer(DefaultK1, DefaultB)
	docs := []Doc{
		{ID: "both", Text: "inverse kinematics solves for joint angles given a pose"},
		{ID: "one", Text: "forward kinematics computes the end effector pose"},
		{ID: "none", Text: "dynamics relates forces to accelerations"},
	}

	scores := s.Score("inverse kinematics", docs)
	require.Len(t, scores, 3)

	assert.Equal(t, "both", scores[0].ID)
	assert.Equal(t, "one", scores[1].ID)
	assert.Equal(t, "none", scores[2].ID)

	assert.Greater(t, scores[0].Score, scores[1].Score)
	assert.Greater(t, scores[1].Score, float64(0))
	assert.Zero(t, scores[2].Score)
}

func TestScoreNonNegativeIDF(t *testing.T) {
	// A term present in every document still contributes non-negatively.
	s := NewScorer(DefaultK1, DefaultB)
	docs := []Doc{
		{ID: "a", Text: "robot arm robot"},
		{ID: "b", Text: "robot leg"},
		{ID: "c", Text: "robot torso"},
	}

	scores := s.Score("robot", docs)
	for _, ds := range scores {
		assert.GreaterOrEqual(t, ds.Score, float64(0))
	}
	// Higher term frequency ranks first.
	assert.Equal(t, "a", scores[0].ID)
}

func TestScoreStableTies(t *testing.T) {
	s := NewScorer(DefaultK1, DefaultB)
	docs := []Doc{
		{ID: "first", Text: "gripper design"},
		{ID: "second", Text: "gripper design"},
		{ID: "third", Text: "unrelated content"},
	}

	scores := s.Score("gripper", docs)
	require.Len(t, scores, 3)

	// Identical documents tie; corpus order breaks the tie.
	assert.Equal(t, "first", scores[0].ID)
	assert.Equal(t, "second", scores[1].ID)
	assert.Equal(t, scores[0].Score, scores[1].Score)
	assert.Equal(t, "third", scores[2].ID)
}

func TestScoreLengthNormalization(t *testing.T) {
	s := NewScorer(DefaultK1, DefaultB)
	docs := []Doc{
		{ID: "short", Text: "jacobian"},
		{ID: "long", Text: "jacobian " + repeat("padding words about nothing ", 20)},
	}

	scores := s.Score("jacobian", docs)
	require.Len(t, scores, 2)

	// Same term frequency, shorter document wins.
	assert.Equal(t, "short", scores[0].ID)
	assert.Greater(t, scores[0].Score, scores[1].Score)
}

func TestScoreDeterministic(t *testing.T) {
	s := NewScorer(DefaultK1, DefaultB)
	docs := []Doc{
		{ID: "a", Text: "trajectory planning in joint space"},
		{ID: "b", Text: "trajectory planning in cartesian space"},
		{ID: "c", Text: "obstacle avoidance"},
	}

	first := s.Score("trajectory planning", docs)
	for i := 0; i < 10; i++ {
		again := s.Score("trajectory planning", docs)
		assert.Equal(t, first, again)
	}
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
