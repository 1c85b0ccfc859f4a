package feed

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	itunes "github.com/eduncan911/podcast"

	"github.com/killallgit/textcast/internal/models"
)

// Metadata describes the podcast channel.
type Metadata struct {
	BaseURL     string
	PodcastUUID string
	Title       string
	Description string
	Author      string
	Email       string
	Language    string
	ImageURL    string
}

// FeedURL is where the feed is served.
func (m Metadata) FeedURL() string {
	return strings.TrimRight(m.BaseURL, "/") + "/podcast/" + url.PathEscape(m.PodcastUUID)
}

// AudioURL is the public URL of an episode's audio file.
func (m Metadata) AudioURL(fileName string) string {
	return strings.TrimRight(m.BaseURL, "/") + "/audio/" + url.PathEscape(fileName)
}

// Build renders episodes, newest first, into an RSS document with iTunes tags.
func Build(meta Metadata, episodes []models.Episode, now time.Time) ([]byte, error) {
	lastBuild := now
	pubDate := now
	if len(episodes) > 0 {
		pubDate = episodes[0].CreatedAt
	}

	p := itunes.New(meta.Title, meta.FeedURL(), meta.Description, &pubDate, &lastBuild)
	p.Language = meta.Language
	p.IExplicit = "no"
	p.AddSummary(meta.Description)
	if meta.Author != "" || meta.Email != "" {
		p.AddAuthor(meta.Author, meta.Email)
	}
	if meta.ImageURL != "" {
		p.AddImage(meta.ImageURL)
	}
	p.AddCategory("Technology", nil)

	for _, ep := range episodes {
		item := itunes.Item{
			Title:       ep.Title,
			Description: episodeDescription(ep),
			GUID:        ep.ID,
		}
		if ep.SourceURL != "" {
			item.Link = ep.SourceURL
		}
		created := ep.CreatedAt
		item.AddPubDate(&created)
		item.AddEnclosure(meta.AudioURL(ep.FileName), itunes.MP3, ep.FileSize)
		item.AddDuration(int64(ep.Duration))

		n, err := p.AddItem(item)
		if err != nil {
			log.Warn("skipping episode in feed", "id", ep.ID, "error", err)
			continue
		}
		// the library only knows a fixed set of enclosure types
		p.Items[n-1].Enclosure.TypeFormatted = models.MimeTypeForFile(ep.FileName)
	}

	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encoding feed: %w", err)
	}
	return buf.Bytes(), nil
}

func episodeDescription(ep models.Episode) string {
	desc := fmt.Sprintf("Audio version of %q.", ep.Title)
	if ep.SourceURL != "" {
		desc += " Source: " + ep.SourceURL
	}
	return desc
}
