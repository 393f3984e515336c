package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

// PipelineService runs the commit-to-suggestion pipeline: analyze a commit
// once, then generate tweet drafts and store them as pending suggestions.
type PipelineService struct {
	users       driven.UserStore
	commits     driven.CommitStore
	suggestions driven.SuggestionStore
	analyzer    *Analyzer
	generator   *Generator
}

func NewPipelineService(
	users driven.UserStore,
	commits driven.CommitStore,
	suggestions driven.SuggestionStore,
	analyzer *Analyzer,
	generator *Generator,
) *PipelineService {
	return &PipelineService{
		users:       users,
		commits:     commits,
		suggestions: suggestions,
		analyzer:    analyzer,
		generator:   generator,
	}
}

// ProcessResult summarizes a batch processing run.
type ProcessResult struct {
	Processed   int `json:"processed"`
	Suggestions int `json:"suggestions"`
}

// ProcessCommit analyzes the commit if it has not been analyzed yet, then
// generates tweet drafts and stores them as pending suggestions for the
// user. It returns the number of suggestions created.
func (s *PipelineService) ProcessCommit(ctx context.Context, userID, commitID string) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return 0, driven.ErrUserNotFound
	}

	commit, err := s.commits.GetByID(ctx, commitID)
	if err != nil {
		return 0, fmt.Errorf("loading commit: %w", err)
	}
	if commit == nil {
		return 0, driven.ErrCommitNotFound
	}

	if !commit.IsAnalyzed() {
		analysis := s.analyzer.Analyze(ctx, *commit)
		analyzedAt := time.Now().UTC()
		if err := s.commits.SetAnalysis(ctx, commit.ID, analysis, analyzedAt); err != nil {
			return 0, fmt.Errorf("storing analysis: %w", err)
		}
		commit.TweetabilityScore = &analysis.Score
		commit.CommitType = analysis.CommitType
		commit.AISummary = analysis.Summary
		commit.AnalyzedAt = &analyzedAt
	}

	drafts := s.generator.Generate(ctx, *commit, user.Voice)

	suggestions := make([]model.TweetSuggestion, 0, len(drafts))
	for _, draft := range drafts {
		suggestions = append(suggestions, model.TweetSuggestion{
			UserID:    userID,
			CommitID:  &commit.ID,
			Content:   draft.Content,
			Tone:      draft.Tone,
			TweetType: draft.TweetType,
			Status:    model.StatusPending,
		})
	}
	if err := s.suggestions.InsertBatch(ctx, suggestions); err != nil {
		return 0, fmt.Errorf("storing suggestions: %w", err)
	}

	slog.Info("processed commit",
		"commit_id", commit.ID,
		"sha", commit.SHA,
		"suggestions", len(suggestions))
	return len(suggestions), nil
}

// ProcessCommits runs ProcessCommit over each ID sequentially. A failure
// on one commit is logged and does not stop the rest of the batch.
func (s *PipelineService) ProcessCommits(ctx context.Context, userID string, commitIDs []string) (ProcessResult, error) {
	var result ProcessResult
	for _, commitID := range commitIDs {
		count, err := s.ProcessCommit(ctx, userID, commitID)
		if err != nil {
			slog.Warn("skipping commit in batch", "commit_id", commitID, "error", err)
			continue
		}
		result.Processed++
		result.Suggestions += count
	}
	return result, nil
}

// ProcessCombined generates a single draft summarizing several commits and
// stores it as a pending suggestion not tied to any one commit. Missing
// commits are skipped; at least one must resolve.
func (s *PipelineService) ProcessCombined(ctx context.Context, userID string, commitIDs []string) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return 0, driven.ErrUserNotFound
	}

	var commits []model.Commit
	for _, commitID := range commitIDs {
		commit, err := s.commits.GetByID(ctx, commitID)
		if err != nil {
			return 0, fmt.Errorf("loading commit: %w", err)
		}
		if commit == nil {
			slog.Warn("skipping unknown commit in combined draft", "commit_id", commitID)
			continue
		}
		commits = append(commits, *commit)
	}
	if len(commits) == 0 {
		return 0, driven.ErrCommitNotFound
	}

	draft := s.generator.GenerateCombined(ctx, commits, user.Voice)
	suggestion := model.TweetSuggestion{
		UserID:    userID,
		Content:   draft.Content,
		Tone:      draft.Tone,
		TweetType: draft.TweetType,
		Status:    model.StatusPending,
	}
	if err := s.suggestions.InsertBatch(ctx, []model.TweetSuggestion{suggestion}); err != nil {
		return 0, fmt.Errorf("storing suggestion: %w", err)
	}

	slog.Info("created combined draft", "commits", len(commits))
	return 1, nil
}
