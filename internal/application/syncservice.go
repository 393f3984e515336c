package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

// SyncService manages connected repositories and pulls their commits from
// GitHub into local storage.
type SyncService struct {
	users           driven.UserStore
	repos           driven.RepoStore
	commits         driven.CommitStore
	newGitHubClient driven.GitHubClientFactory
}

func NewSyncService(
	users driven.UserStore,
	repos driven.RepoStore,
	commits driven.CommitStore,
	newGitHubClient driven.GitHubClientFactory,
) *SyncService {
	return &SyncService{
		users:           users,
		repos:           repos,
		commits:         commits,
		newGitHubClient: newGitHubClient,
	}
}

// ListGitHubRepositories returns the repositories the user owns on GitHub,
// most recently pushed first.
func (s *SyncService) ListGitHubRepositories(ctx context.Context, userID string) ([]model.RemoteRepository, error) {
	user, err := s.githubUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	client := s.newGitHubClient(user.GitHubAccessToken)
	repos, err := client.ListRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing github repositories: %w", err)
	}
	return repos, nil
}

// ConnectRepository registers a GitHub repository for commit tracking. The
// operation is idempotent: reconnecting an already-connected repository
// reactivates it instead of creating a duplicate row.
func (s *SyncService) ConnectRepository(ctx context.Context, userID string, remote model.RemoteRepository) (*model.Repository, error) {
	existing, err := s.repos.GetByGitHubRepoID(ctx, userID, remote.ID)
	if err != nil {
		return nil, fmt.Errorf("checking existing repository: %w", err)
	}
	if existing != nil {
		if !existing.IsActive {
			if err := s.repos.SetActive(ctx, existing.ID, true); err != nil {
				return nil, fmt.Errorf("reactivating repository: %w", err)
			}
			existing.IsActive = true
		}
		return existing, nil
	}

	repo := model.Repository{
		UserID:        userID,
		GitHubRepoID:  remote.ID,
		Name:          remote.Name,
		FullName:      remote.FullName,
		Description:   remote.Description,
		DefaultBranch: remote.DefaultBranch,
		IsPrivate:     remote.IsPrivate,
		IsActive:      true,
	}
	if err := s.repos.Create(ctx, repo); err != nil {
		return nil, fmt.Errorf("creating repository: %w", err)
	}

	created, err := s.repos.GetByGitHubRepoID(ctx, userID, remote.ID)
	if err != nil {
		return nil, fmt.Errorf("loading created repository: %w", err)
	}

	slog.Info("connected repository", "full_name", remote.FullName, "user_id", userID)
	return created, nil
}

// ListRepositories returns the user's active connected repositories.
func (s *SyncService) ListRepositories(ctx context.Context, userID string) ([]model.Repository, error) {
	return s.repos.ListActiveByUser(ctx, userID)
}

// DisconnectRepository soft-deletes a connection by marking it inactive.
// Synced commits and suggestions are kept.
func (s *SyncService) DisconnectRepository(ctx context.Context, userID, repoID string) error {
	repo, err := s.repos.GetByID(ctx, repoID)
	if err != nil {
		return fmt.Errorf("loading repository: %w", err)
	}
	if repo == nil {
		return driven.ErrRepoNotFound
	}
	if repo.UserID != userID {
		return ErrNotAuthorized
	}
	if err := s.repos.SetActive(ctx, repoID, false); err != nil {
		return fmt.Errorf("deactivating repository: %w", err)
	}
	return nil
}

// Sync fetches commits for the repository from GitHub and stores the ones
// not seen before, keyed by SHA. It returns the number of new commits.
// The sync timestamp is updated even when no new commits are found so a
// widened window on the next call does not refetch the same range.
func (s *SyncService) Sync(ctx context.Context, userID, repoID string, since, until *time.Time) (int, error) {
	repo, err := s.repos.GetByID(ctx, repoID)
	if err != nil {
		return 0, fmt.Errorf("loading repository: %w", err)
	}
	if repo == nil {
		return 0, driven.ErrRepoNotFound
	}
	if repo.UserID != userID {
		return 0, ErrNotAuthorized
	}

	user, err := s.githubUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	client := s.newGitHubClient(user.GitHubAccessToken)
	remote, err := client.ListCommits(ctx, repo.FullName, since, until)
	if err != nil {
		return 0, fmt.Errorf("listing commits for %s: %w", repo.FullName, err)
	}

	known, err := s.commits.ListSHAsByRepository(ctx, repo.ID)
	if err != nil {
		return 0, fmt.Errorf("loading known commit SHAs: %w", err)
	}

	var fresh []model.Commit
	for _, rc := range remote {
		if known[rc.SHA] {
			continue
		}
		fresh = append(fresh, model.Commit{
			RepositoryID: repo.ID,
			SHA:          rc.SHA,
			Message:      rc.Message,
			Author:       rc.Author,
			AuthorEmail:  rc.AuthorEmail,
			FilesChanged: rc.FilesChanged,
			Additions:    rc.Additions,
			Deletions:    rc.Deletions,
			CommittedAt:  rc.CommittedAt,
		})
	}

	if len(fresh) > 0 {
		if err := s.commits.InsertBatch(ctx, fresh); err != nil {
			return 0, fmt.Errorf("storing commits: %w", err)
		}
	}

	if err := s.repos.UpdateLastSyncedAt(ctx, repo.ID, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("updating sync timestamp: %w", err)
	}

	slog.Info("synced repository",
		"full_name", repo.FullName,
		"fetched", len(remote),
		"new", len(fresh))
	return len(fresh), nil
}

// ListCommits returns the repository's stored commits, newest first.
func (s *SyncService) ListCommits(ctx context.Context, userID, repoID string, limit int) ([]model.Commit, error) {
	repo, err := s.repos.GetByID(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("loading repository: %w", err)
	}
	if repo == nil {
		return nil, driven.ErrRepoNotFound
	}
	if repo.UserID != userID {
		return nil, ErrNotAuthorized
	}
	return s.commits.ListByRepository(ctx, repo.ID, limit)
}

func (s *SyncService) githubUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, driven.ErrUserNotFound
	}
	if !user.HasGitHub() {
		return nil, driven.ErrGitHubNotConnected
	}
	return user, nil
}
