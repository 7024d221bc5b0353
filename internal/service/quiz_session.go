package service

import (
	"math"
	"sync"
	"time"
	"trading_edu_backend/internal/model"
	"trading_edu_backend/internal/util"
)

type QuizState string

const (
	QuizNotStarted QuizState = "not_started"
	QuizInProgress QuizState = "in_progress"
	QuizComplete   QuizState = "complete"
)

// QuizOutcome 测验完成后的评分结果
type QuizOutcome struct {
	ModuleID         string `json:"moduleId"`
	Correct          int    `json:"correct"`
	TotalQuestions   int    `json:"totalQuestions"`
	Score            int    `json:"score"`
	Passed           bool   `json:"passed"`
	TimeSpentSeconds int    `json:"timeSpent"`
}

// QuizSession 单个学员的答题过程，每道题以第一次作答为准
type QuizSession struct {
	ID       string
	UserID   string
	ModuleID string
	Level    model.Level

	mu        sync.Mutex
	questions []model.QuizQuestion
	state     QuizState
	current   int
	selected  int
	answered  bool
	correct   int
	startedAt time.Time
	outcome   *QuizOutcome
	now       func() time.Time
}

func NewQuizSession(userID string, module *model.LearningModule, questions []model.QuizQuestion, now func() time.Time) *QuizSession {
	if now == nil {
		now = time.Now
	}
	return &QuizSession{
		ID:        model.GenerateUUID(),
		UserID:    userID,
		ModuleID:  module.ID,
		Level:     module.Level,
		questions: questions,
		state:     QuizNotStarted,
		selected:  -1,
		now:       now,
	}
}

func (s *QuizSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return util.ErrNoQuestions
	}
	s.reset()
	return nil
}

func (s *QuizSession) reset() {
	s.state = QuizInProgress
	s.current = 0
	s.selected = -1
	s.answered = false
	s.correct = 0
	s.outcome = nil
	s.startedAt = s.now()
}

// SelectOption answers the current question. accepted is false when the
// question was already answered.
func (s *QuizSession) SelectOption(index int) (accepted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != QuizInProgress {
		return false, util.ErrQuizNotInProgress
	}
	q := s.questions[s.current]
	if index < 0 || index >= len(q.Options) {
		return false, util.ErrInvalidOption
	}
	if s.answered {
		return false, nil
	}
	s.answered = true
	s.selected = index
	if index == q.CorrectAnswer {
		s.correct++
	}
	return true, nil
}

// Next moves to the following question. On the last question it completes
// the session and returns the outcome.
func (s *QuizSession) Next() (*QuizOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != QuizInProgress {
		return nil, util.ErrQuizNotInProgress
	}
	if !s.answered {
		return nil, util.ErrQuestionNotAnswered
	}
	if s.current < len(s.questions)-1 {
		s.current++
		s.selected = -1
		s.answered = false
		return nil, nil
	}

	total := len(s.questions)
	score := int(math.Round(100 * float64(s.correct) / float64(total)))
	s.outcome = &QuizOutcome{
		ModuleID:         s.ModuleID,
		Correct:          s.correct,
		TotalQuestions:   total,
		Score:            score,
		Passed:           score >= util.PassThreshold,
		TimeSpentSeconds: int(s.now().Sub(s.startedAt).Seconds()),
	}
	s.state = QuizComplete
	out := *s.outcome
	return &out, nil
}

// Restart 重新开始同一套题，只有已完成的测验可以重做
func (s *QuizSession) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != QuizComplete {
		return util.ErrQuizNotComplete
	}
	s.reset()
	return nil
}

type QuizQuestionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// QuizView is what a client renders. Correctness is only revealed once the
// current question is answered.
type QuizView struct {
	SessionID      string            `json:"sessionId"`
	ModuleID       string            `json:"moduleId"`
	Level          model.Level       `json:"level"`
	State          QuizState         `json:"state"`
	QuestionIndex  int               `json:"questionIndex"`
	TotalQuestions int               `json:"totalQuestions"`
	Question       *QuizQuestionView `json:"question,omitempty"`
	SelectedOption *int              `json:"selectedOption,omitempty"`
	Answered       bool              `json:"answered"`
	IsCorrect      *bool             `json:"isCorrect,omitempty"`
	CorrectAnswer  *int              `json:"correctAnswer,omitempty"`
	Explanation    string            `json:"explanation,omitempty"`
	CorrectSoFar   int               `json:"correctSoFar"`
	Outcome        *QuizOutcome      `json:"outcome,omitempty"`
}

func (s *QuizSession) View() *QuizView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &QuizView{
		SessionID:      s.ID,
		ModuleID:       s.ModuleID,
		Level:          s.Level,
		State:          s.state,
		QuestionIndex:  s.current,
		TotalQuestions: len(s.questions),
		CorrectSoFar:   s.correct,
	}
	if s.outcome != nil {
		out := *s.outcome
		v.Outcome = &out
	}
	if s.state != QuizInProgress {
		return v
	}

	q := s.questions[s.current]
	v.Question = &QuizQuestionView{ID: q.ID, Question: q.Question, Options: q.Options}
	v.Answered = s.answered
	if s.answered {
		selected := s.selected
		correct := q.CorrectAnswer
		isCorrect := selected == correct
		v.SelectedOption = &selected
		v.CorrectAnswer = &correct
		v.IsCorrect = &isCorrect
		v.Explanation = q.Explanation
	}
	return v
}

func (s *QuizSession) State() QuizState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
