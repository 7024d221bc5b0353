package service

import (
	"context"
	"errors"
	"testing"
	"trading_edu_backend/internal/catalog"
	"trading_edu_backend/internal/model"
	"trading_edu_backend/internal/util"
)

type stubQuestions struct {
	questions []model.QuizQuestion
	err       error
	calls     []string
}

func (s *stubQuestions) FindQuizQuestions(_ context.Context, moduleID string, level model.Level) ([]model.QuizQuestion, error) {
	s.calls = append(s.calls, moduleID+"/"+string(level))
	return s.questions, s.err
}

func TestStartQuizQuestionResolution(t *testing.T) {
	remote := []model.QuizQuestion{
		{ID: "r1", Question: "remote", Options: []string{"a", "b"}, CorrectAnswer: 1},
	}
	tests := []struct {
		name      string
		source    *stubQuestions
		wantTotal int
		wantFirst string
	}{
		{"remote questions win", &stubQuestions{questions: remote}, 1, "r1"},
		{"empty remote falls back", &stubQuestions{}, 10, "basics-1-q1"},
		{"remote error falls back", &stubQuestions{err: errStoreDown}, 10, "basics-1-q1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 3)
			qsvc := NewQuizService(f.catalog, tt.source, f.svc)

			v, err := qsvc.StartQuiz(context.Background(), learner, "basics-1")
			if err != nil {
				t.Fatalf("StartQuiz() error = %v", err)
			}
			if v.TotalQuestions != tt.wantTotal || v.Question.ID != tt.wantFirst {
				t.Errorf("quiz = %d questions starting %s, want %d starting %s",
					v.TotalQuestions, v.Question.ID, tt.wantTotal, tt.wantFirst)
			}
			if len(tt.source.calls) != 1 || tt.source.calls[0] != "basics-1/basics" {
				t.Errorf("source calls = %v", tt.source.calls)
			}
		})
	}
}

func TestStartQuizWithoutQuestions(t *testing.T) {
	cat, err := catalog.New([]model.LearningModule{
		{ID: "basics-1", Level: model.LevelBasics, SortOrder: 1, Title: "cards only"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	qsvc := NewQuizService(cat, &stubQuestions{}, nil)

	if _, err := qsvc.StartQuiz(context.Background(), learner, "basics-1"); !errors.Is(err, util.ErrNoQuestions) {
		t.Errorf("StartQuiz() error = %v, want ErrNoQuestions", err)
	}
	if _, err := qsvc.Current(learner); !errors.Is(err, util.ErrNoActiveQuiz) {
		t.Errorf("Current() error = %v, want ErrNoActiveQuiz", err)
	}
	if _, err := qsvc.StartQuiz(context.Background(), learner, "missing"); !errors.Is(err, util.ErrModuleNotFound) {
		t.Errorf("StartQuiz(missing) error = %v", err)
	}
}

func finishQuiz(t *testing.T, qsvc *QuizService, correct int) *QuizStep {
	t.Helper()
	var step *QuizStep
	for i := 0; i < 10; i++ {
		option := 1
		if i < correct {
			option = 0
		}
		if _, err := qsvc.Answer(learner, option); err != nil {
			t.Fatalf("Answer() error = %v", err)
		}
		var err error
		step, err = qsvc.Next(context.Background(), learner)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
	}
	return step
}

func TestQuizCompletionRecordsResult(t *testing.T) {
	f := newFixture(t, 3)
	qsvc := NewQuizService(f.catalog, nil, f.svc)
	ctx := context.Background()

	if _, err := qsvc.StartQuiz(ctx, learner, "basics-1"); err != nil {
		t.Fatal(err)
	}
	step := finishQuiz(t, qsvc, 6)
	if step.Record == nil {
		t.Fatal("completion did not record a result")
	}
	if step.Record.Result.Score != 60 || step.Record.Result.Passed || step.Record.ModuleCompleted {
		t.Errorf("record = %+v", step.Record)
	}
	view, _ := f.svc.Snapshot(ctx, learner)
	if view.CompletedModules[model.LevelBasics] != 0 {
		t.Error("failed quiz changed counters")
	}

	// restart keeps the stored result until the new attempt completes
	if _, err := qsvc.Restart(learner); err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	view, _ = f.svc.Snapshot(ctx, learner)
	if got := view.QuizResults["basics-1"]; got.Score != 60 || got.Attempts != 1 {
		t.Errorf("stored result after restart = %+v", got)
	}

	step = finishQuiz(t, qsvc, 7)
	if !step.Record.Result.Passed || step.Record.Result.Score != 70 || !step.Record.ModuleCompleted {
		t.Errorf("second attempt = %+v", step.Record)
	}
	if step.Quiz.State != QuizComplete || step.Quiz.Outcome == nil {
		t.Errorf("quiz view = %+v", step.Quiz)
	}
	view, _ = f.svc.Snapshot(ctx, learner)
	if view.CompletedModules[model.LevelBasics] != 1 || view.QuizResults["basics-1"].Attempts != 2 {
		t.Errorf("snapshot = %+v", view)
	}
}

func TestAbandonedQuizLeavesNoRecord(t *testing.T) {
	f := newFixture(t, 3)
	qsvc := NewQuizService(f.catalog, nil, f.svc)
	ctx := context.Background()

	qsvc.StartQuiz(ctx, learner, "basics-1")
	qsvc.Answer(learner, 0)
	qsvc.Next(ctx, learner)

	if !qsvc.Abandon(learner) {
		t.Fatal("Abandon() = false")
	}
	if f.store.Writes("quiz") != 0 {
		t.Error("abandoned quiz was recorded")
	}
	if _, err := qsvc.Next(ctx, learner); !errors.Is(err, util.ErrNoActiveQuiz) {
		t.Errorf("Next() after abandon error = %v", err)
	}
}

func TestStartQuizReplacesLiveSession(t *testing.T) {
	f := newFixture(t, 3)
	qsvc := NewQuizService(f.catalog, nil, f.svc)
	ctx := context.Background()

	first, _ := qsvc.StartQuiz(ctx, learner, "basics-1")
	second, err := qsvc.StartQuiz(ctx, learner, "basics-2")
	if err != nil {
		t.Fatal(err)
	}
	if first.SessionID == second.SessionID {
		t.Error("new quiz reused the session id")
	}
	cur, _ := qsvc.Current(learner)
	if cur.ModuleID != "basics-2" {
		t.Errorf("live quiz module = %s, want basics-2", cur.ModuleID)
	}
	if _, err := qsvc.Current("someone-else"); !errors.Is(err, util.ErrNoActiveQuiz) {
		t.Errorf("other learner sees a quiz: %v", err)
	}
}
