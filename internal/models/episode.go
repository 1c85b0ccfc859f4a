package models

import (
	"fmt"
	"time"
)

// Episode is a persisted, published audio episode. Only DownloadCount
// changes after creation.
type Episode struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	FileName      string        `json:"fileName"`
	FilePath      string        `json:"filePath"`
	Duration      int           `json:"duration"`
	FileSize      int64         `json:"fileSize"`
	CreatedAt     time.Time     `json:"createdAt"`
	SourceType    EpisodeSource `json:"sourceType"`
	SourceURL     string        `json:"sourceUrl,omitempty"`
	DownloadCount int           `json:"downloadCount"`
}

// EpisodesMetadata is the root document of the episode store, newest first.
type EpisodesMetadata struct {
	Episodes    []Episode `json:"episodes"`
	TotalCount  int       `json:"totalCount"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// SynthesisResult describes a freshly synthesized audio file before it is
// handed to the store.
type SynthesisResult struct {
	EpisodeID string    `json:"episodeId"`
	Title     string    `json:"title"`
	FileName  string    `json:"fileName"`
	FilePath  string    `json:"filePath"`
	FileSize  int64     `json:"fileSize"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"createdAt"`
}

// ScratchDirPrefix starts the name of the temporary directory a chunked
// synthesis works in, followed by the episode id and a dash.
const ScratchDirPrefix = ".synth-"

// EpisodeFileName is the audio file name owned by an episode id.
func EpisodeFileName(id string, encoding AudioEncoding) string {
	return fmt.Sprintf("episode-%s%s", id, encoding.Extension())
}

// ProgressStage names a step of synthesis.
type ProgressStage string

const (
	StagePreparing     ProgressStage = "preparing"
	StageGenerating    ProgressStage = "generating"
	StageConcatenating ProgressStage = "concatenating"
	StageFinalizing    ProgressStage = "finalizing"
)

// Progress is reported while an episode is synthesized.
type Progress struct {
	Stage           ProgressStage `json:"stage"`
	Percent         int           `json:"progress"`
	Message         string        `json:"message"`
	ChunksTotal     int           `json:"chunksTotal,omitempty"`
	ChunksCompleted int           `json:"chunksCompleted,omitempty"`
}
