package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

const (
	generationMaxTokens  = 1000
	generationFileLimit  = 5
	voiceExampleLimit    = 3
	fallbackSummaryLimit = 200
)

// Generator drafts tweet variations for commits using a text model. Like
// the analyzer it never fails the pipeline: any model or parsing failure
// degrades to a single templated draft.
type Generator struct {
	textModel driven.TextModel
}

func NewGenerator(textModel driven.TextModel) *Generator {
	return &Generator{textModel: textModel}
}

// Generate produces up to four tweet drafts for a commit, one per tone.
// Drafts whose raw content exceeds 280 characters are discarded; when
// nothing usable survives, a single templated fallback draft is returned.
func (g *Generator) Generate(ctx context.Context, commit model.Commit, voice *model.VoiceSettings) []model.TweetDraft {
	if g.textModel == nil {
		return []model.TweetDraft{fallbackDraft(commit)}
	}

	drafts, err := g.generate(ctx, buildGenerationPrompt(commit, voice))
	if err != nil {
		slog.Warn("tweet generation failed, using fallback draft",
			"commit_id", commit.ID,
			"sha", commit.SHA,
			"error", err)
		return []model.TweetDraft{fallbackDraft(commit)}
	}
	return drafts
}

// GenerateCombined produces a single draft summarizing several commits at
// once.
func (g *Generator) GenerateCombined(ctx context.Context, commits []model.Commit, voice *model.VoiceSettings) model.TweetDraft {
	if g.textModel == nil || len(commits) == 0 {
		return combinedFallbackDraft(commits)
	}

	drafts, err := g.generate(ctx, buildCombinedPrompt(commits, voice))
	if err != nil || len(drafts) == 0 {
		if err != nil {
			slog.Warn("combined tweet generation failed, using fallback draft",
				"commits", len(commits),
				"error", err)
		}
		return combinedFallbackDraft(commits)
	}
	return drafts[0]
}

func (g *Generator) generate(ctx context.Context, prompt string) ([]model.TweetDraft, error) {
	response, err := g.textModel.Complete(ctx, prompt, generationMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("completing generation prompt: %w", err)
	}

	extracted, err := extractJSONArray(response)
	if err != nil {
		return nil, fmt.Errorf("extracting drafts JSON: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(extracted), &entries); err != nil {
		return nil, fmt.Errorf("decoding drafts JSON: %w", err)
	}

	var drafts []model.TweetDraft
	for _, entry := range entries {
		var parsed struct {
			Content   string `json:"content"`
			Tone      string `json:"tone"`
			TweetType string `json:"tweetType"`
		}
		// Malformed entries are dropped individually so one bad draft
		// does not discard the rest.
		if err := json.Unmarshal(entry, &parsed); err != nil {
			continue
		}
		if len([]rune(parsed.Content)) > model.MaxPostLength {
			continue
		}
		content := strings.TrimSpace(parsed.Content)
		if content == "" {
			continue
		}
		drafts = append(drafts, model.TweetDraft{
			Content:   content,
			Tone:      model.CoerceTone(parsed.Tone),
			TweetType: model.CoerceTweetType(parsed.TweetType),
		})
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("no usable drafts in response")
	}
	return drafts, nil
}

func fallbackDraft(commit model.Commit) model.TweetDraft {
	summary := commit.AISummary
	if summary == "" {
		summary = commit.Message
	}
	return model.TweetDraft{
		Content:   "Just shipped: " + truncateRunes(summary, fallbackSummaryLimit) + " #buildinpublic",
		Tone:      model.ToneCasual,
		TweetType: model.TweetTypeShipped,
	}
}

func combinedFallbackDraft(commits []model.Commit) model.TweetDraft {
	return model.TweetDraft{
		Content:   fmt.Sprintf("Shipped %d updates today. Steady progress! #buildinpublic", len(commits)),
		Tone:      model.ToneCasual,
		TweetType: model.TweetTypeProgress,
	}
}

func buildGenerationPrompt(commit model.Commit, voice *model.VoiceSettings) string {
	var b strings.Builder

	b.WriteString("You write tweets for a developer building in public.\n\n")
	writeVoiceContext(&b, voice)

	b.WriteString("They just made this commit:\n\n")
	summary := commit.AISummary
	if summary == "" {
		summary = commit.Subject()
	}
	fmt.Fprintf(&b, "Summary: %s\n", summary)
	if commit.CommitType != "" {
		fmt.Fprintf(&b, "Type: %s\n", commit.CommitType)
	}
	fmt.Fprintf(&b, "Changes: +%d -%d\n", commit.Additions, commit.Deletions)
	for i, file := range commit.FilesChanged {
		if i >= generationFileLimit {
			break
		}
		fmt.Fprintf(&b, "- %s\n", file.Filename)
	}

	b.WriteString("\nWrite 4 tweet variations about this change, one in each tone: casual, professional, excited, technical.\n")
	b.WriteString("Each tweet must be under 280 characters. No hashtag spam, at most one hashtag.\n\n")
	b.WriteString("Respond with ONLY a JSON array, no other text. Each element:\n")
	b.WriteString(`{"content": "the tweet text", "tone": "casual|professional|excited|technical", "tweetType": "shipped|progress|technical|milestone|problem_solution"}` + "\n")

	return b.String()
}

func buildCombinedPrompt(commits []model.Commit, voice *model.VoiceSettings) string {
	var b strings.Builder

	b.WriteString("You write tweets for a developer building in public.\n\n")
	writeVoiceContext(&b, voice)

	fmt.Fprintf(&b, "They shipped %d changes today:\n\n", len(commits))
	for _, commit := range commits {
		summary := commit.AISummary
		if summary == "" {
			summary = commit.Subject()
		}
		fmt.Fprintf(&b, "- %s\n", summary)
	}

	b.WriteString("\nWrite 1 tweet summarizing the day's progress, under 280 characters, at most one hashtag.\n\n")
	b.WriteString("Respond with ONLY a JSON array containing one element:\n")
	b.WriteString(`{"content": "the tweet text", "tone": "casual|professional|excited|technical", "tweetType": "shipped|progress|technical|milestone|problem_solution"}` + "\n")

	return b.String()
}

func writeVoiceContext(b *strings.Builder, voice *model.VoiceSettings) {
	if voice == nil {
		return
	}
	if voice.ProductDescription != "" {
		fmt.Fprintf(b, "Product: %s\n", voice.ProductDescription)
	}
	if voice.TargetAudience != "" {
		fmt.Fprintf(b, "Audience: %s\n", voice.TargetAudience)
	}
	if voice.PreferredTone != "" {
		fmt.Fprintf(b, "Preferred tone: %s\n", voice.PreferredTone)
	}
	if len(voice.ExampleTweets) > 0 {
		b.WriteString("Example tweets in their voice:\n")
		for i, example := range voice.ExampleTweets {
			if i >= voiceExampleLimit {
				break
			}
			fmt.Fprintf(b, "- %s\n", example)
		}
	}
	b.WriteString("\n")
}
