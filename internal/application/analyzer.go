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
	analysisMaxTokens    = 500
	analysisFileLimit    = 10
	analysisPatchPreview = 500
	fallbackScore        = 30
)

// Analyzer scores commits for tweetability using a text model. When the
// model is unavailable or its response cannot be parsed, Analyze degrades
// to a fixed heuristic rather than failing the pipeline.
type Analyzer struct {
	textModel driven.TextModel
}

func NewAnalyzer(textModel driven.TextModel) *Analyzer {
	return &Analyzer{textModel: textModel}
}

// Analyze produces a tweetability score, a commit category and a one-line
// summary for the commit. It never returns an error; any failure falls
// back to a conservative default analysis.
func (a *Analyzer) Analyze(ctx context.Context, commit model.Commit) model.CommitAnalysis {
	if a.textModel == nil {
		return fallbackAnalysis(commit)
	}

	analysis, err := a.analyze(ctx, commit)
	if err != nil {
		slog.Warn("commit analysis failed, using fallback",
			"commit_id", commit.ID,
			"sha", commit.SHA,
			"error", err)
		return fallbackAnalysis(commit)
	}
	return analysis
}

func (a *Analyzer) analyze(ctx context.Context, commit model.Commit) (model.CommitAnalysis, error) {
	response, err := a.textModel.Complete(ctx, buildAnalysisPrompt(commit), analysisMaxTokens)
	if err != nil {
		return model.CommitAnalysis{}, fmt.Errorf("completing analysis prompt: %w", err)
	}

	extracted, err := extractJSONObject(response)
	if err != nil {
		return model.CommitAnalysis{}, fmt.Errorf("extracting analysis JSON: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(extracted), &fields); err != nil {
		return model.CommitAnalysis{}, fmt.Errorf("decoding analysis JSON: %w", err)
	}

	analysis := model.CommitAnalysis{
		Score:      fallbackScore,
		CommitType: model.CommitTypeChore,
		Summary:    commit.Subject(),
	}

	// Fields of the wrong type are ignored rather than failing the whole
	// analysis; the defaults above stand in for them.
	if raw, ok := fields["tweetabilityScore"]; ok {
		var score float64
		if err := json.Unmarshal(raw, &score); err == nil {
			analysis.Score = clampScore(int(score))
		}
	}
	if raw, ok := fields["commitType"]; ok {
		var commitType string
		if err := json.Unmarshal(raw, &commitType); err == nil {
			analysis.CommitType = model.CoerceCommitType(commitType)
		}
	}
	if raw, ok := fields["aiSummary"]; ok {
		var summary string
		if err := json.Unmarshal(raw, &summary); err == nil && strings.TrimSpace(summary) != "" {
			analysis.Summary = strings.TrimSpace(summary)
		}
	}

	return analysis, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func fallbackAnalysis(commit model.Commit) model.CommitAnalysis {
	return model.CommitAnalysis{
		Score:      fallbackScore,
		CommitType: model.CommitTypeChore,
		Summary:    commit.Subject(),
	}
}

func buildAnalysisPrompt(commit model.Commit) string {
	var b strings.Builder

	b.WriteString("Analyze this git commit and respond with ONLY a JSON object, no other text.\n\n")
	b.WriteString("Commit message:\n")
	b.WriteString(commit.Message)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Changes: +%d -%d across %d files\n", commit.Additions, commit.Deletions, len(commit.FilesChanged))

	for i, file := range commit.FilesChanged {
		if i >= analysisFileLimit {
			fmt.Fprintf(&b, "... and %d more files\n", len(commit.FilesChanged)-analysisFileLimit)
			break
		}
		fmt.Fprintf(&b, "\n%s (%s, +%d -%d)\n", file.Filename, file.Status, file.Additions, file.Deletions)
		if file.Patch != "" {
			b.WriteString(truncateRunes(file.Patch, analysisPatchPreview))
			b.WriteString("\n")
		}
	}

	b.WriteString("\nRespond with a JSON object with these fields:\n")
	b.WriteString(`- "tweetabilityScore": integer 0-100, how interesting this change would be to share publicly` + "\n")
	b.WriteString(`- "commitType": one of "feature", "fix", "refactor", "docs", "chore", "style", "test", "perf"` + "\n")
	b.WriteString(`- "aiSummary": one sentence describing what changed, in plain language` + "\n")

	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
