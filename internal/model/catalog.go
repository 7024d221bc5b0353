package model

import "time"

// LearningModule is one unit of a level: a deck of flashcards and an
// optional embedded quiz.
// swagger:model LearningModule
type LearningModule struct {
	ID               string         `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Level            Level          `gorm:"size:20;index;not null" json:"level" yaml:"level"`
	SortOrder        int            `gorm:"not null" json:"sortOrder" yaml:"sort_order"`
	Title            string         `gorm:"size:255;not null" json:"title" yaml:"title"`
	Description      string         `gorm:"type:text" json:"description" yaml:"description"`
	EstimatedMinutes int            `json:"estimatedMinutes" yaml:"estimated_minutes"`
	Published        bool           `json:"published" yaml:"published"`
	Flashcards       []Flashcard    `gorm:"foreignKey:ModuleID" json:"flashcards,omitempty" yaml:"flashcards"`
	Questions        []QuizQuestion `gorm:"foreignKey:ModuleID" json:"-" yaml:"quiz"`
	CreatedAt        time.Time      `json:"-" yaml:"-"`
	UpdatedAt        time.Time      `json:"-" yaml:"-"`
}

func (LearningModule) TableName() string {
	return "learning_modules"
}

// HasQuiz reports whether the module carries an embedded question set.
func (m *LearningModule) HasQuiz() bool {
	return len(m.Questions) > 0
}

type Flashcard struct {
	ID        string `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	ModuleID  string `gorm:"size:64;index;not null" json:"-" yaml:"-"`
	SortOrder int    `json:"sortOrder" yaml:"sort_order"`
	Title     string `gorm:"size:255" json:"title" yaml:"title"`
	Question  string `gorm:"type:text" json:"question" yaml:"question"`
	Answer    string `gorm:"type:text" json:"answer" yaml:"answer"`
}

func (Flashcard) TableName() string {
	return "flashcards"
}

// QuizQuestion rows double as the remotely authored question sets that take
// precedence over a module's bundled quiz.
type QuizQuestion struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	ModuleID      string    `gorm:"size:64;index:idx_quiz_module_level;not null" json:"moduleId" yaml:"-"`
	Level         Level     `gorm:"size:20;index:idx_quiz_module_level;not null" json:"level" yaml:"-"`
	Question      string    `gorm:"type:text;not null" json:"question" yaml:"question"`
	Options       []string  `gorm:"serializer:json;type:text" json:"options" yaml:"options"`
	CorrectAnswer int       `json:"-" yaml:"correct_answer"`
	Explanation   string    `gorm:"type:text" json:"explanation,omitempty" yaml:"explanation"`
	CreatedAt     time.Time `json:"-" yaml:"-"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

type BadgeCondition string

const (
	ConditionFirstModule  BadgeCondition = "first_module"
	ConditionHalfModules  BadgeCondition = "half_modules"
	ConditionAllModules   BadgeCondition = "all_modules"
	ConditionFirstQuiz    BadgeCondition = "first_quiz"
	ConditionPerfectScore BadgeCondition = "perfect_score"
	ConditionCustom       BadgeCondition = "custom"
)

// swagger:model BadgeDefinition
type BadgeDefinition struct {
	ID          string         `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Name        string         `gorm:"size:100;not null" json:"name" yaml:"name"`
	Description string         `gorm:"size:255" json:"description" yaml:"description"`
	Image       string         `gorm:"size:255" json:"image" yaml:"image"`
	Level       Level          `gorm:"size:20;index" json:"level,omitempty" yaml:"level"`
	Condition   BadgeCondition `gorm:"size:32;not null" json:"condition" yaml:"condition"`
}

func (BadgeDefinition) TableName() string {
	return "badges"
}
