package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/killallgit/textcast/internal/models"
	"github.com/killallgit/textcast/internal/services/synthesis"
	"github.com/killallgit/textcast/internal/services/tts"
	"github.com/killallgit/textcast/pkg/speech"
)

var (
	generateTitle      string
	generateSourceType string
	generateSourceURL  string
	generateVoice      string
	generateDryRun     bool
)

// generateCmd synthesizes a text file into a stored episode
var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Synthesize a text file into a new episode",
	Long: `Synthesize already-extracted text into a new episode.

The text is read from the given file, or from stdin when the file is
omitted or "-". Long texts are split and joined automatically.

Example:
  textcast generate article.md --title "Weekly notes"
  cat post.txt | textcast generate --title "Post" --source-type html --source-url https://example.com/post
  textcast generate article.md --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateTitle, "title", "t", "", "episode title (defaults to the file name)")
	generateCmd.Flags().StringVar(&generateSourceType, "source-type", string(models.SourceMarkdown), "content source (markdown, html, artifact)")
	generateCmd.Flags().StringVar(&generateSourceURL, "source-url", "", "original URL of the content")
	generateCmd.Flags().StringVar(&generateVoice, "voice", "", "voice preset ("+strings.Join(models.VoicePresets(), ", ")+")")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "print the synthesis plan without calling the provider")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	text, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	title := generateTitle
	if title == "" && path != "-" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if title == "" {
		return fmt.Errorf("--title is required when reading from stdin")
	}

	content := models.ProcessedContent{
		Title:      title,
		Text:       text,
		SourceType: models.SourceType(generateSourceType),
	}
	if !content.SourceType.Valid() {
		return fmt.Errorf("unknown source type %q", generateSourceType)
	}

	var override *models.AudioConfig
	if generateVoice != "" {
		audio, err := models.PresetAudioConfig(generateVoice)
		if err != nil {
			return err
		}
		override = &audio
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	synth, ready := newSynthesizer(ctx, appConfig)
	svc, err := newSynthesisService(appConfig, synth, synthesis.WithProgress(func(p models.Progress) {
		log.Info(p.Message, "stage", p.Stage, "progress", p.Percent)
	}))
	if err != nil {
		return err
	}

	if generateDryRun {
		printPlan(cmd, svc, content, override)
		return nil
	}
	if !ready {
		return fmt.Errorf("speech synthesis is not configured; set tts.api_key or tts.credentials_file")
	}

	result, err := svc.Synthesize(ctx, content, override)
	if err != nil {
		return err
	}

	store := newStore(appConfig, false)
	episode, err := store.Save(ctx, content, result, generateSourceURL)
	if err != nil {
		if rmErr := store.Discard(ctx, result); rmErr != nil {
			log.Warn("failed to remove unsaved audio", "path", result.FilePath, "error", rmErr)
		}
		return err
	}

	fmt.Fprintf(out, "Created episode %s\n", episode.ID)
	fmt.Fprintf(out, "  Title:    %s\n", episode.Title)
	fmt.Fprintf(out, "  File:     %s (%s)\n", episode.FileName, humanize.Bytes(uint64(episode.FileSize)))
	fmt.Fprintf(out, "  Duration: %s\n", formatDuration(episode.Duration))
	return nil
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func printPlan(cmd *cobra.Command, svc *synthesis.Service, content models.ProcessedContent, override *models.AudioConfig) {
	prepared := speech.Prepare(content.Text)
	strategy := svc.SelectStrategy(len(prepared))

	voice := appConfig.TTS.VoicePreset
	if generateVoice != "" {
		voice = generateVoice
	}
	voiceName := ""
	if override != nil {
		voiceName = override.Voice.Name
	} else if cfg, err := models.PresetAudioConfig(voice); err == nil {
		voiceName = cfg.Voice.Name
	}

	chunks := 1
	if strategy == synthesis.StrategyChunked {
		chunks = len(speech.Split(prepared, appConfig.TTS.RegularLimit))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title:      %s\n", content.Title)
	fmt.Fprintf(out, "Characters: %s\n", humanize.Comma(int64(len(prepared))))
	fmt.Fprintf(out, "Words:      %s\n", humanize.Comma(int64(speech.CountWords(prepared))))
	fmt.Fprintf(out, "Strategy:   %s (%d chunk(s))\n", strategy, chunks)
	fmt.Fprintf(out, "Voice:      %s (%s)\n", voice, voiceName)
	fmt.Fprintf(out, "Estimate:   %s, $%.4f\n",
		formatDuration(speech.EstimateDurationSeconds(prepared)),
		tts.EstimateCost(len(prepared), voiceName))
}
