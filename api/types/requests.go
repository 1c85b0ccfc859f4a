package types

import "github.com/killallgit/textcast/internal/models"

// CreateEpisodeRequest carries already-extracted text to be synthesized.
type CreateEpisodeRequest struct {
	Title      string            `json:"title" binding:"required"`
	Text       string            `json:"text" binding:"required"`
	SourceType models.SourceType `json:"sourceType"`
	SourceURL  string            `json:"sourceUrl"`
	// Voice names a preset such as "female-wavenet".
	Voice string `json:"voice"`
}

// Content converts the request into processed content, defaulting the
// source type to markdown.
func (r CreateEpisodeRequest) Content() models.ProcessedContent {
	sourceType := r.SourceType
	if sourceType == "" {
		sourceType = models.SourceMarkdown
	}
	return models.ProcessedContent{
		Title:      r.Title,
		Text:       r.Text,
		SourceType: sourceType,
	}
}
