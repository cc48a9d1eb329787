package model

// CategoryStat is one group of the per-category snippet count.
// Categories with zero snippets never appear — callers that need
// zero-counts union the result against the full category list.
type CategoryStat struct {
	CategoryID int64 `json:"categoryId"`
	Count      int   `json:"count"`
}

// LanguageStat is one group of the per-language snippet count.
type LanguageStat struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}
