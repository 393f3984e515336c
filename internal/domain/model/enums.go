package model

// Tone describes the voice of a generated draft.
type Tone string

const (
	ToneCasual       Tone = "casual"
	ToneProfessional Tone = "professional"
	ToneExcited      Tone = "excited"
	ToneTechnical    Tone = "technical"
)

// Tones lists every supported tone in the order drafts are requested.
var Tones = []Tone{ToneCasual, ToneProfessional, ToneExcited, ToneTechnical}

// CoerceTone maps an arbitrary string to a supported tone, defaulting to
// casual for unrecognized values. Model output is not trusted to stay
// inside the enumeration.
func CoerceTone(s string) Tone {
	switch Tone(s) {
	case ToneCasual, ToneProfessional, ToneExcited, ToneTechnical:
		return Tone(s)
	}
	return ToneCasual
}

// TweetType categorizes what kind of update a draft announces.
type TweetType string

const (
	TweetTypeShipped         TweetType = "shipped"
	TweetTypeProgress        TweetType = "progress"
	TweetTypeTechnical       TweetType = "technical"
	TweetTypeMilestone       TweetType = "milestone"
	TweetTypeProblemSolution TweetType = "problem_solution"
)

// CoerceTweetType maps an arbitrary string to a supported tweet type,
// defaulting to shipped for unrecognized values.
func CoerceTweetType(s string) TweetType {
	switch TweetType(s) {
	case TweetTypeShipped, TweetTypeProgress, TweetTypeTechnical,
		TweetTypeMilestone, TweetTypeProblemSolution:
		return TweetType(s)
	}
	return TweetTypeShipped
}

// SuggestionStatus is the lifecycle state of a draft.
type SuggestionStatus string

const (
	StatusPending   SuggestionStatus = "pending"
	StatusAccepted  SuggestionStatus = "accepted"
	StatusRejected  SuggestionStatus = "rejected"
	StatusScheduled SuggestionStatus = "scheduled"
	StatusPosted    SuggestionStatus = "posted"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s SuggestionStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusPosted
}

// ParseSuggestionStatus validates a status string from an API caller.
func ParseSuggestionStatus(s string) (SuggestionStatus, bool) {
	switch SuggestionStatus(s) {
	case StatusPending, StatusAccepted, StatusRejected, StatusScheduled, StatusPosted:
		return SuggestionStatus(s), true
	}
	return "", false
}

// CommitType labels what kind of change a commit makes.
type CommitType string

const (
	CommitTypeFeature  CommitType = "feature"
	CommitTypeFix      CommitType = "fix"
	CommitTypeRefactor CommitType = "refactor"
	CommitTypeDocs     CommitType = "docs"
	CommitTypeChore    CommitType = "chore"
	CommitTypeStyle    CommitType = "style"
	CommitTypeTest     CommitType = "test"
	CommitTypePerf     CommitType = "perf"
)

// CoerceCommitType maps an arbitrary string to a supported commit type,
// defaulting to chore for unrecognized values.
func CoerceCommitType(s string) CommitType {
	switch CommitType(s) {
	case CommitTypeFeature, CommitTypeFix, CommitTypeRefactor, CommitTypeDocs,
		CommitTypeChore, CommitTypeStyle, CommitTypeTest, CommitTypePerf:
		return CommitType(s)
	}
	return CommitTypeChore
}

// FileStatus is the change kind of a file within a commit.
type FileStatus string

const (
	FileAdded    FileStatus = "added"
	FileModified FileStatus = "modified"
	FileRemoved  FileStatus = "removed"
	FileRenamed  FileStatus = "renamed"
)
