package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/notepaste/internal/model"
)

func TestStatsServiceCategoryStats(t *testing.T) {
	repo := &fakeSnippetRepo{snippets: []model.Snippet{
		{ID: 1, Language: "go", CategoryID: 2},
		{ID: 2, Language: "go", CategoryID: 1},
		{ID: 3, Language: "rust", CategoryID: 2},
		{ID: 4, Language: "go", CategoryID: 2},
	}}
	svc := NewStatsService(repo, testLogger())

	stats, err := svc.CategoryStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []model.CategoryStat{
		{CategoryID: 1, Count: 1},
		{CategoryID: 2, Count: 3},
	}, stats)

	// The counts always sum to the collection size.
	total := 0
	for _, s := range stats {
		total += s.Count
	}
	assert.Equal(t, len(repo.snippets), total)
}

func TestStatsServiceLanguageStats(t *testing.T) {
	repo := &fakeSnippetRepo{snippets: []model.Snippet{
		{ID: 1, Language: "rust", CategoryID: 1},
		{ID: 2, Language: "go", CategoryID: 1},
		{ID: 3, Language: "go", CategoryID: 2},
	}}
	svc := NewStatsService(repo, testLogger())

	stats, err := svc.LanguageStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []model.LanguageStat{
		{Language: "go", Count: 2},
		{Language: "rust", Count: 1},
	}, stats)
}

func TestStatsServiceEmptyStore(t *testing.T) {
	svc := NewStatsService(&fakeSnippetRepo{}, testLogger())

	categoryStats, err := svc.CategoryStats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, categoryStats)

	languageStats, err := svc.LanguageStats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, languageStats)
}

func TestStatsServiceRepoError(t *testing.T) {
	boom := errors.New("store unavailable")
	svc := NewStatsService(&fakeSnippetRepo{failWith: boom}, testLogger())

	_, err := svc.CategoryStats(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = svc.LanguageStats(context.Background())
	assert.ErrorIs(t, err, boom)
}
