package application_test

import (
	"context"
	"time"

	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

// --- Mock implementations shared across the service tests ---

type mockTextModel struct {
	complete func(ctx context.Context, prompt string, maxTokens int) (string, error)
	prompts  []string
}

func (m *mockTextModel) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.complete(ctx, prompt, maxTokens)
}

type mockUserStore struct {
	users      map[string]*model.User
	tokenCalls []tokenCall
}

type tokenCall struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

func newMockUserStore(users ...*model.User) *mockUserStore {
	m := &mockUserStore{users: make(map[string]*model.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) Create(_ context.Context, user model.User) error {
	m.users[user.ID] = &user
	return nil
}

func (m *mockUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	return m.users[id], nil
}

func (m *mockUserStore) UpdateVoiceSettings(_ context.Context, userID string, voice *model.VoiceSettings) error {
	if u, ok := m.users[userID]; ok {
		u.Voice = voice
	}
	return nil
}

func (m *mockUserStore) UpdateTwitterTokens(_ context.Context, userID, accessToken, refreshToken string) error {
	m.tokenCalls = append(m.tokenCalls, tokenCall{UserID: userID, AccessToken: accessToken, RefreshToken: refreshToken})
	if u, ok := m.users[userID]; ok {
		u.TwitterAccessToken = accessToken
		u.TwitterRefreshToken = refreshToken
	}
	return nil
}

type mockRepoStore struct {
	repos       map[string]*model.Repository
	setActive   []setActiveCall
	syncedAt    map[string]time.Time
	createCalls []model.Repository
}

type setActiveCall struct {
	ID     string
	Active bool
}

func newMockRepoStore(repos ...*model.Repository) *mockRepoStore {
	m := &mockRepoStore{
		repos:    make(map[string]*model.Repository),
		syncedAt: make(map[string]time.Time),
	}
	for _, r := range repos {
		m.repos[r.ID] = r
	}
	return m
}

func (m *mockRepoStore) Create(_ context.Context, repo model.Repository) error {
	if repo.ID == "" {
		repo.ID = "generated-" + repo.FullName
	}
	m.createCalls = append(m.createCalls, repo)
	m.repos[repo.ID] = &repo
	return nil
}

func (m *mockRepoStore) GetByID(_ context.Context, id string) (*model.Repository, error) {
	return m.repos[id], nil
}

func (m *mockRepoStore) GetByGitHubRepoID(_ context.Context, userID string, githubRepoID int64) (*model.Repository, error) {
	for _, r := range m.repos {
		if r.UserID == userID && r.GitHubRepoID == githubRepoID {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockRepoStore) ListActiveByUser(_ context.Context, userID string) ([]model.Repository, error) {
	var out []model.Repository
	for _, r := range m.repos {
		if r.UserID == userID && r.IsActive {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRepoStore) SetActive(_ context.Context, id string, active bool) error {
	m.setActive = append(m.setActive, setActiveCall{ID: id, Active: active})
	if r, ok := m.repos[id]; ok {
		r.IsActive = active
	}
	return nil
}

func (m *mockRepoStore) UpdateLastSyncedAt(_ context.Context, id string, syncedAt time.Time) error {
	m.syncedAt[id] = syncedAt
	return nil
}

type mockCommitStore struct {
	commits  map[string]*model.Commit
	inserted [][]model.Commit
	analyses []analysisCall
}

type analysisCall struct {
	ID       string
	Analysis model.CommitAnalysis
}

func newMockCommitStore(commits ...*model.Commit) *mockCommitStore {
	m := &mockCommitStore{commits: make(map[string]*model.Commit)}
	for _, c := range commits {
		m.commits[c.ID] = c
	}
	return m
}

func (m *mockCommitStore) InsertBatch(_ context.Context, commits []model.Commit) error {
	m.inserted = append(m.inserted, commits)
	for i := range commits {
		c := commits[i]
		if c.ID == "" {
			c.ID = "generated-" + c.SHA
		}
		m.commits[c.ID] = &c
	}
	return nil
}

func (m *mockCommitStore) GetByID(_ context.Context, id string) (*model.Commit, error) {
	return m.commits[id], nil
}

func (m *mockCommitStore) ListSHAsByRepository(_ context.Context, repositoryID string) (map[string]bool, error) {
	shas := make(map[string]bool)
	for _, c := range m.commits {
		if c.RepositoryID == repositoryID {
			shas[c.SHA] = true
		}
	}
	return shas, nil
}

func (m *mockCommitStore) ListByRepository(_ context.Context, repositoryID string, _ int) ([]model.Commit, error) {
	var out []model.Commit
	for _, c := range m.commits {
		if c.RepositoryID == repositoryID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCommitStore) SetAnalysis(_ context.Context, id string, analysis model.CommitAnalysis, analyzedAt time.Time) error {
	c, ok := m.commits[id]
	if !ok || c.AnalyzedAt != nil {
		return driven.ErrCommitNotFound
	}
	m.analyses = append(m.analyses, analysisCall{ID: id, Analysis: analysis})
	c.TweetabilityScore = &analysis.Score
	c.CommitType = analysis.CommitType
	c.AISummary = analysis.Summary
	c.AnalyzedAt = &analyzedAt
	return nil
}

type mockSuggestionStore struct {
	suggestions map[string]*model.TweetSuggestion
	inserted    [][]model.TweetSuggestion
	posted      []postedCall
	deleted     []string
}

type postedCall struct {
	ID      string
	TweetID string
}

func newMockSuggestionStore(suggestions ...*model.TweetSuggestion) *mockSuggestionStore {
	m := &mockSuggestionStore{suggestions: make(map[string]*model.TweetSuggestion)}
	for _, s := range suggestions {
		m.suggestions[s.ID] = s
	}
	return m
}

func (m *mockSuggestionStore) InsertBatch(_ context.Context, suggestions []model.TweetSuggestion) error {
	m.inserted = append(m.inserted, suggestions)
	for i := range suggestions {
		s := suggestions[i]
		if s.ID == "" {
			s.ID = "generated"
		}
		m.suggestions[s.ID] = &s
	}
	return nil
}

func (m *mockSuggestionStore) GetByID(_ context.Context, id string) (*model.TweetSuggestion, error) {
	return m.suggestions[id], nil
}

func (m *mockSuggestionStore) ListByUser(_ context.Context, userID string, filter driven.SuggestionFilter) ([]model.TweetSuggestion, error) {
	var out []model.TweetSuggestion
	for _, s := range m.suggestions {
		if s.UserID != userID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockSuggestionStore) UpdateStatus(_ context.Context, id string, status model.SuggestionStatus) error {
	s, ok := m.suggestions[id]
	if !ok {
		return driven.ErrSuggestionNotFound
	}
	s.Status = status
	return nil
}

func (m *mockSuggestionStore) UpdateContent(_ context.Context, id string, content string) error {
	s, ok := m.suggestions[id]
	if !ok {
		return driven.ErrSuggestionNotFound
	}
	s.Content = content
	return nil
}

func (m *mockSuggestionStore) MarkScheduled(_ context.Context, id string, scheduledFor time.Time) error {
	s, ok := m.suggestions[id]
	if !ok {
		return driven.ErrSuggestionNotFound
	}
	s.Status = model.StatusScheduled
	s.ScheduledFor = &scheduledFor
	return nil
}

func (m *mockSuggestionStore) MarkPosted(_ context.Context, id string, tweetID string, postedAt time.Time) error {
	s, ok := m.suggestions[id]
	if !ok {
		return driven.ErrSuggestionNotFound
	}
	m.posted = append(m.posted, postedCall{ID: id, TweetID: tweetID})
	s.Status = model.StatusPosted
	s.TweetID = tweetID
	s.PostedAt = &postedAt
	return nil
}

func (m *mockSuggestionStore) Delete(_ context.Context, id string) error {
	if _, ok := m.suggestions[id]; !ok {
		return driven.ErrSuggestionNotFound
	}
	m.deleted = append(m.deleted, id)
	delete(m.suggestions, id)
	return nil
}

type mockGitHubClient struct {
	listRepositories func(ctx context.Context) ([]model.RemoteRepository, error)
	listCommits      func(ctx context.Context, repoFullName string, since, until *time.Time) ([]model.RemoteCommit, error)
	tokens           []string
}

func (m *mockGitHubClient) ListRepositories(ctx context.Context) ([]model.RemoteRepository, error) {
	return m.listRepositories(ctx)
}

func (m *mockGitHubClient) ListCommits(ctx context.Context, repoFullName string, since, until *time.Time) ([]model.RemoteCommit, error) {
	return m.listCommits(ctx, repoFullName, since, until)
}

// factory returns a GitHubClientFactory that records the token used and
// always hands back this mock.
func (m *mockGitHubClient) factory() driven.GitHubClientFactory {
	return func(token string) driven.GitHubClient {
		m.tokens = append(m.tokens, token)
		return m
	}
}

type mockTwitterClient struct {
	createPost   func(ctx context.Context, accessToken, text string) (string, error)
	refreshToken func(ctx context.Context, refreshToken string) (*model.TokenPair, error)

	postCalls    []postCall
	refreshCalls int
}

type postCall struct {
	AccessToken string
	Text        string
}

func (m *mockTwitterClient) CreatePost(ctx context.Context, accessToken, text string) (string, error) {
	m.postCalls = append(m.postCalls, postCall{AccessToken: accessToken, Text: text})
	return m.createPost(ctx, accessToken, text)
}

func (m *mockTwitterClient) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	m.refreshCalls++
	return m.refreshToken(ctx, refreshToken)
}
