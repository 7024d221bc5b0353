package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"trading_edu_backend/internal/catalog"
	"trading_edu_backend/internal/model"
	"trading_edu_backend/internal/repository"
)

// newTestCatalog builds perLevel modules for every level. Each module has two
// flashcards and ten questions whose correct answer is option 0.
func newTestCatalog(t *testing.T, perLevel int) *catalog.Catalog {
	t.Helper()
	var modules []model.LearningModule
	for _, level := range model.Levels {
		for i := 1; i <= perLevel; i++ {
			id := fmt.Sprintf("%s-%d", level, i)
			m := model.LearningModule{
				ID:        id,
				Level:     level,
				SortOrder: i,
				Title:     fmt.Sprintf("%s module %d", level, i),
				Published: true,
				Flashcards: []model.Flashcard{
					{ID: id + "-c1", SortOrder: 1, Title: "one"},
					{ID: id + "-c2", SortOrder: 2, Title: "two"},
				},
			}
			for q := 1; q <= 10; q++ {
				m.Questions = append(m.Questions, model.QuizQuestion{
					ID:            fmt.Sprintf("%s-q%d", id, q),
					Question:      fmt.Sprintf("question %d", q),
					Options:       []string{"right", "wrong", "also wrong"},
					CorrectAnswer: 0,
				})
			}
			modules = append(modules, m)
		}
	}

	var badges []model.BadgeDefinition
	for _, level := range model.Levels {
		badges = append(badges,
			model.BadgeDefinition{ID: string(level) + "-starter", Name: "Starter", Level: level, Condition: model.ConditionFirstModule, Image: "🏆"},
			model.BadgeDefinition{ID: string(level) + "-half", Name: "Half", Level: level, Condition: model.ConditionHalfModules, Image: "badges/half.png"},
			model.BadgeDefinition{ID: string(level) + "-complete", Name: "Complete", Level: level, Condition: model.ConditionAllModules, Image: "🎓"},
		)
	}
	badges = append(badges,
		model.BadgeDefinition{ID: "first-quiz", Name: "Quiz Taker", Condition: model.ConditionFirstQuiz, Image: "📝"},
		model.BadgeDefinition{ID: "perfect-score", Name: "Perfectionist", Condition: model.ConditionPerfectScore, Image: "💯"},
	)

	cat, err := catalog.New(modules, badges)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

var errStoreDown = errors.New("store unavailable")

// countingStore wraps a store, counts writes by kind and can fail them.
type countingStore struct {
	repository.ProgressStore

	mu       sync.Mutex
	writes   map[string]int
	failAll  bool
	failLoad bool
}

func newCountingStore() *countingStore {
	return &countingStore{
		ProgressStore: repository.NewMemoryProgressStore(),
		writes:        make(map[string]int),
	}
}

func (s *countingStore) count(kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes[kind]++
	if s.failAll {
		return errStoreDown
	}
	return nil
}

func (s *countingStore) Writes(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[kind]
}

func (s *countingStore) LoadSnapshot(ctx context.Context, userID string) (*model.Snapshot, error) {
	if s.failLoad {
		return nil, errStoreDown
	}
	return s.ProgressStore.LoadSnapshot(ctx, userID)
}

func (s *countingStore) SaveUserProgress(ctx context.Context, p *model.UserProgress) error {
	if err := s.count("user"); err != nil {
		return err
	}
	return s.ProgressStore.SaveUserProgress(ctx, p)
}

func (s *countingStore) SaveModuleProgress(ctx context.Context, p *model.ModuleProgress) error {
	if err := s.count("module"); err != nil {
		return err
	}
	return s.ProgressStore.SaveModuleProgress(ctx, p)
}

func (s *countingStore) CompleteModule(ctx context.Context, p *model.ModuleProgress, up *model.UserProgress, level model.Level) error {
	if err := s.count("complete"); err != nil {
		return err
	}
	return s.ProgressStore.CompleteModule(ctx, p, up, level)
}

func (s *countingStore) SaveQuizResult(ctx context.Context, r *model.QuizResult) error {
	if err := s.count("quiz"); err != nil {
		return err
	}
	return s.ProgressStore.SaveQuizResult(ctx, r)
}

func (s *countingStore) UnlockBadge(ctx context.Context, b *model.UserBadge) (bool, error) {
	if err := s.count("badge"); err != nil {
		return false, err
	}
	return s.ProgressStore.UnlockBadge(ctx, b)
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

func (r *recordingNotifier) count(kind NotificationKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recordingNotifier) badgeCount(badgeID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.Kind == NotifyBadgeUnlocked && it.BadgeID == badgeID {
			n++
		}
	}
	return n
}

type fixture struct {
	svc      *ProgressService
	store    *countingStore
	notifier *recordingNotifier
	catalog  *catalog.Catalog
}

func newFixture(t *testing.T, perLevel int) *fixture {
	t.Helper()
	cat := newTestCatalog(t, perLevel)
	store := newCountingStore()
	notifier := &recordingNotifier{}
	svc := NewProgressService(store, cat, notifier, nil, map[string]int{
		"basics": 15, "intermediate": 15, "pro": 15,
	})
	return &fixture{svc: svc, store: store, notifier: notifier, catalog: cat}
}

func (f *fixture) pass(t *testing.T, user, moduleID string, score int) *QuizRecordResult {
	t.Helper()
	res, err := f.svc.RecordQuizResult(context.Background(), user, QuizSubmission{
		ModuleID: moduleID, Passed: score >= 70, Score: score, TotalQuestions: 10, TimeSpentSeconds: 30,
	})
	if err != nil {
		t.Fatalf("RecordQuizResult(%s) error = %v", moduleID, err)
	}
	return res
}
