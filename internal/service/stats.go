package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sakif/notepaste/internal/model"
	"github.com/sakif/notepaste/internal/repository"
)

// StatsService computes aggregate counts over the snippet collection.
// Every call recomputes from a fresh full scan — nothing is maintained
// incrementally, so the numbers are always consistent with the store at
// the moment of the call.
type StatsService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
}

// NewStatsService creates a new StatsService.
func NewStatsService(repo repository.SnippetRepository, logger *slog.Logger) *StatsService {
	return &StatsService{
		repo:   repo,
		logger: logger,
	}
}

// CategoryStats groups all snippets by categoryId. Only categories with at
// least one snippet appear; union against CategoryService.GetAll if
// zero-counts are needed. Results are sorted by categoryId.
func (s *StatsService) CategoryStats(ctx context.Context) ([]model.CategoryStat, error) {
	snippets, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to compute category stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("computing category stats: %w", err)
	}

	counts := make(map[int64]int)
	for _, snippet := range snippets {
		counts[snippet.CategoryID]++
	}

	stats := make([]model.CategoryStat, 0, len(counts))
	for categoryID, count := range counts {
		stats = append(stats, model.CategoryStat{CategoryID: categoryID, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].CategoryID < stats[j].CategoryID })
	return stats, nil
}

// LanguageStats groups all snippets by language, sorted by language.
func (s *StatsService) LanguageStats(ctx context.Context) ([]model.LanguageStat, error) {
	snippets, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to compute language stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("computing language stats: %w", err)
	}

	counts := make(map[string]int)
	for _, snippet := range snippets {
		counts[snippet.Language]++
	}

	stats := make([]model.LanguageStat, 0, len(counts))
	for language, count := range counts {
		stats = append(stats, model.LanguageStat{Language: language, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Language < stats[j].Language })
	return stats, nil
}
