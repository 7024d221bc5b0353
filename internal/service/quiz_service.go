package service

import (
	"context"
	"sync"
	"time"
	"trading_edu_backend/internal/catalog"
	"trading_edu_backend/internal/model"
	"trading_edu_backend/internal/util"
	"trading_edu_backend/pkg/logger"
	"trading_edu_backend/pkg/tracing"

	"go.uber.org/zap"
)

// QuestionSource 远程题库
type QuestionSource interface {
	FindQuizQuestions(ctx context.Context, moduleID string, level model.Level) ([]model.QuizQuestion, error)
}

// QuizService 测验服务，每个学员同时最多一个进行中的测验
// 完成的测验交给 ProgressService 记录
type QuizService struct {
	Catalog   *catalog.Catalog
	Questions QuestionSource
	Progress  *ProgressService

	mu       sync.Mutex
	sessions map[string]*QuizSession

	now func() time.Time
}

func NewQuizService(cat *catalog.Catalog, questions QuestionSource, progress *ProgressService) *QuizService {
	return &QuizService{
		Catalog:   cat,
		Questions: questions,
		Progress:  progress,
		sessions:  make(map[string]*QuizSession),
		now:       time.Now,
	}
}

// QuizStep is the result of advancing a quiz. Record is set once the quiz
// completes and its result has been stored.
type QuizStep struct {
	Quiz   *QuizView         `json:"quiz"`
	Record *QuizRecordResult `json:"record,omitempty"`
}

// loadQuestions 优先使用远程题库，没有时使用模块自带的题目
func (s *QuizService) loadQuestions(ctx context.Context, m *model.LearningModule) ([]model.QuizQuestion, error) {
	if s.Questions != nil {
		remote, err := s.Questions.FindQuizQuestions(ctx, m.ID, m.Level)
		if err != nil {
			logger.Log.Warn("加载远程题库失败，使用内置题目",
				zap.String("moduleId", m.ID),
				zap.Error(err),
			)
		}
		if usable := answerable(remote); len(usable) > 0 {
			return usable, nil
		}
	}
	if bundled := answerable(m.Questions); len(bundled) > 0 {
		return bundled, nil
	}
	return nil, util.ErrNoQuestions
}

func answerable(qs []model.QuizQuestion) []model.QuizQuestion {
	out := make([]model.QuizQuestion, 0, len(qs))
	for _, q := range qs {
		if len(q.Options) > 0 {
			out = append(out, q)
		}
	}
	return out
}

// StartQuiz opens a quiz for moduleID, replacing any quiz the learner had
// open.
func (s *QuizService) StartQuiz(ctx context.Context, userID, moduleID string) (*QuizView, error) {
	ctx, span := tracing.Tracer.Start(ctx, "QuizService.StartQuiz")
	defer span.End()

	if userID == "" {
		return nil, util.ErrMissingUser
	}
	m, ok := s.Catalog.Module(moduleID)
	if !ok {
		return nil, util.ErrModuleNotFound
	}
	questions, err := s.loadQuestions(ctx, m)
	if err != nil {
		return nil, err
	}

	qs := NewQuizSession(userID, m, questions, s.now)
	if err := qs.Start(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[userID] = qs
	s.mu.Unlock()

	return qs.View(), nil
}

func (s *QuizService) active(userID string) (*QuizSession, error) {
	if userID == "" {
		return nil, util.ErrMissingUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	qs, ok := s.sessions[userID]
	if !ok {
		return nil, util.ErrNoActiveQuiz
	}
	return qs, nil
}

func (s *QuizService) Current(userID string) (*QuizView, error) {
	qs, err := s.active(userID)
	if err != nil {
		return nil, err
	}
	return qs.View(), nil
}

// Answer selects an option for the current question. A repeated answer is
// ignored and the view shows the first one.
func (s *QuizService) Answer(userID string, option int) (*QuizView, error) {
	qs, err := s.active(userID)
	if err != nil {
		return nil, err
	}
	if _, err := qs.SelectOption(option); err != nil {
		return nil, err
	}
	return qs.View(), nil
}

func (s *QuizService) Next(ctx context.Context, userID string) (*QuizStep, error) {
	ctx, span := tracing.Tracer.Start(ctx, "QuizService.Next")
	defer span.End()

	qs, err := s.active(userID)
	if err != nil {
		return nil, err
	}
	outcome, err := qs.Next()
	if err != nil {
		return nil, err
	}

	step := &QuizStep{}
	if outcome != nil {
		step.Record, err = s.Progress.RecordQuizResult(ctx, userID, QuizSubmission{
			ModuleID:         outcome.ModuleID,
			Passed:           outcome.Passed,
			Score:            outcome.Score,
			TotalQuestions:   outcome.TotalQuestions,
			TimeSpentSeconds: outcome.TimeSpentSeconds,
		})
		if err != nil {
			return nil, err
		}
	}
	step.Quiz = qs.View()
	return step, nil
}

// Restart replays a completed quiz. The stored result is only replaced when
// the new attempt completes.
func (s *QuizService) Restart(userID string) (*QuizView, error) {
	qs, err := s.active(userID)
	if err != nil {
		return nil, err
	}
	if err := qs.Restart(); err != nil {
		return nil, err
	}
	return qs.View(), nil
}

// Abandon 放弃当前测验，不记录结果
func (s *QuizService) Abandon(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return ok
}
