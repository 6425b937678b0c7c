package ports

import "quotebot/internal/domain"

// CloudRenderer turns a word-frequency table into a rendered word-cloud
// image. It is an optional capability: when no renderer is available the
// wordcloud command reports the feature as unavailable instead of invoking
// the pipeline.
type CloudRenderer interface {
	// Render lays out the words and returns an encoded PNG. font selects a
	// typeface from the renderer's catalog by name; an empty or unknown
	// name falls back to a default, and fellBack reports that an explicit
	// request could not be honored.
	Render(words []domain.WordCount, font string) (png []byte, fellBack bool, err error)
}
