package model

import "time"

// ModuleProgress is the per-user record of one module. It is created on first
// view or first navigation and never deleted.
type ModuleProgress struct {
	BaseModel
	UserID           string     `gorm:"size:64;not null;uniqueIndex:idx_module_progress_user_module" json:"-"`
	ModuleID         string     `gorm:"size:64;not null;uniqueIndex:idx_module_progress_user_module" json:"moduleId"`
	Completed        bool       `gorm:"not null" json:"completed"`
	Viewed           bool       `gorm:"not null" json:"viewed"`
	CurrentCardIndex int        `gorm:"not null" json:"currentCardIndex"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}

// QuizResult holds the latest quiz outcome for a module; a new attempt
// overwrites it. Attempts counts every recorded attempt.
type QuizResult struct {
	BaseModel
	UserID           string    `gorm:"size:64;not null;uniqueIndex:idx_quiz_result_user_module" json:"-"`
	ModuleID         string    `gorm:"size:64;not null;uniqueIndex:idx_quiz_result_user_module" json:"moduleId"`
	Completed        bool      `gorm:"not null" json:"completed"`
	Passed           bool      `gorm:"not null" json:"passed"`
	Score            int       `gorm:"not null" json:"score"`
	TotalQuestions   int       `gorm:"not null" json:"totalQuestions"`
	TimeSpentSeconds int       `gorm:"not null" json:"timeSpent"`
	Attempts         int       `gorm:"not null" json:"attempts"`
	CompletedAt      time.Time `json:"completedAt"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}

// UserBadge exists once a badge is unlocked.
type UserBadge struct {
	BaseModel
	UserID     string    `gorm:"size:64;not null;uniqueIndex:idx_user_badge" json:"-"`
	BadgeID    string    `gorm:"size:64;not null;uniqueIndex:idx_user_badge" json:"badgeId"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}

// UserProgress is the learner cursor plus the completed-module counters.
type UserProgress struct {
	BaseModel
	UserID                string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	CurrentLevel          Level     `gorm:"size:20;not null" json:"currentLevel"`
	CurrentModuleID       string    `gorm:"size:64" json:"currentModuleId"`
	CurrentCardIndex      int       `gorm:"not null" json:"currentCardIndex"`
	CompletedBasics       int       `gorm:"not null" json:"completedBasics"`
	CompletedIntermediate int       `gorm:"not null" json:"completedIntermediate"`
	CompletedPro          int       `gorm:"not null" json:"completedPro"`
	LastActivity          time.Time `json:"lastActivity"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// NewUserProgress returns the starting cursor of a learner.
func NewUserProgress(userID string) *UserProgress {
	return &UserProgress{UserID: userID, CurrentLevel: LevelBasics}
}

func (p *UserProgress) Completed(level Level) int {
	switch level {
	case LevelBasics:
		return p.CompletedBasics
	case LevelIntermediate:
		return p.CompletedIntermediate
	case LevelPro:
		return p.CompletedPro
	}
	return 0
}

func (p *UserProgress) SetCompleted(level Level, n int) {
	switch level {
	case LevelBasics:
		p.CompletedBasics = n
	case LevelIntermediate:
		p.CompletedIntermediate = n
	case LevelPro:
		p.CompletedPro = n
	}
}

// IncrementCompleted adds one completed module to level and returns the new count.
func (p *UserProgress) IncrementCompleted(level Level) int {
	n := p.Completed(level) + 1
	p.SetCompleted(level, n)
	return n
}

// CompletedByLevel returns the counters keyed by level.
func (p *UserProgress) CompletedByLevel() map[Level]int {
	out := make(map[Level]int, len(Levels))
	for _, l := range Levels {
		out[l] = p.Completed(l)
	}
	return out
}

// Snapshot is everything persisted for one learner.
type Snapshot struct {
	Progress    *UserProgress
	Modules     []ModuleProgress
	QuizResults []QuizResult
	Badges      []UserBadge
}
