package models

// SourceType identifies how a piece of content reached the pipeline.
type SourceType string

const (
	SourceMarkdown SourceType = "markdown"
	SourceHTML     SourceType = "html"
	SourceArtifact SourceType = "artifact"
)

// EpisodeSource is the persisted source kind of an episode.
type EpisodeSource string

const (
	EpisodeSourceMarkdown EpisodeSource = "markdown"
	EpisodeSourceURL      EpisodeSource = "url"
	EpisodeSourceArtifact EpisodeSource = "artifact"
)

// ProcessedContent is speech-ready text produced by content extraction.
type ProcessedContent struct {
	Title      string     `json:"title"`
	Text       string     `json:"text"`
	SourceType SourceType `json:"sourceType"`
}

// EpisodeSource maps the content source onto the kind stored with an episode.
// HTML content was fetched from a URL; anything unrecognized is treated as
// an artifact.
func (c ProcessedContent) EpisodeSource() EpisodeSource {
	switch c.SourceType {
	case SourceMarkdown:
		return EpisodeSourceMarkdown
	case SourceHTML:
		return EpisodeSourceURL
	default:
		return EpisodeSourceArtifact
	}
}

// Valid reports whether t is a known source type.
func (t SourceType) Valid() bool {
	switch t {
	case SourceMarkdown, SourceHTML, SourceArtifact:
		return true
	}
	return false
}
