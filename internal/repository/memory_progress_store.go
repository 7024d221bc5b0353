package repository

import (
	"context"
	"sort"
	"sync"
	"trading_edu_backend/internal/model"
)

type memoryUser struct {
	progress *model.UserProgress
	modules  map[string]model.ModuleProgress
	quiz     map[string]model.QuizResult
	badges   map[string]model.UserBadge
}

// MemoryProgressStore 进度只保存在进程内存中，重启后丢失
type MemoryProgressStore struct {
	mu    sync.RWMutex
	users map[string]*memoryUser
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{users: make(map[string]*memoryUser)}
}

func (s *MemoryProgressStore) user(userID string) *memoryUser {
	u, ok := s.users[userID]
	if !ok {
		u = &memoryUser{
			modules: make(map[string]model.ModuleProgress),
			quiz:    make(map[string]model.QuizResult),
			badges:  make(map[string]model.UserBadge),
		}
		s.users[userID] = u
	}
	return u
}

func (u *memoryUser) module(moduleID string) *model.ModuleProgress {
	mp, ok := u.modules[moduleID]
	if !ok {
		return nil
	}
	return &mp
}

func (s *MemoryProgressStore) LoadSnapshot(_ context.Context, userID string) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &model.Snapshot{}
	u, ok := s.users[userID]
	if !ok {
		return snap, nil
	}
	if u.progress != nil {
		p := *u.progress
		snap.Progress = &p
	}
	for _, mp := range u.modules {
		snap.Modules = append(snap.Modules, mp)
	}
	for _, qr := range u.quiz {
		snap.QuizResults = append(snap.QuizResults, qr)
	}
	for _, b := range u.badges {
		snap.Badges = append(snap.Badges, b)
	}
	sort.Slice(snap.Modules, func(i, j int) bool { return snap.Modules[i].ModuleID < snap.Modules[j].ModuleID })
	sort.Slice(snap.QuizResults, func(i, j int) bool { return snap.QuizResults[i].ModuleID < snap.QuizResults[j].ModuleID })
	sort.Slice(snap.Badges, func(i, j int) bool { return snap.Badges[i].UnlockedAt.Before(snap.Badges[j].UnlockedAt) })
	return snap, nil
}

func (s *MemoryProgressStore) SaveUserProgress(_ context.Context, p *model.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(p.UserID)
	cp := mergeUserProgress(u.progress, *p)
	u.progress = &cp
	return nil
}

func (s *MemoryProgressStore) SaveModuleProgress(_ context.Context, p *model.ModuleProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(p.UserID)
	u.modules[p.ModuleID] = mergeModuleProgress(u.module(p.ModuleID), *p)
	return nil
}

func (s *MemoryProgressStore) CompleteModule(_ context.Context, p *model.ModuleProgress, up *model.UserProgress, level model.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(p.UserID)
	mp, cp := completeModule(u.module(p.ModuleID), u.progress, *p, *up, level)
	u.modules[p.ModuleID] = mp
	u.progress = &cp
	return nil
}

func (s *MemoryProgressStore) SaveQuizResult(_ context.Context, r *model.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(r.UserID).quiz[r.ModuleID] = *r
	return nil
}

func (s *MemoryProgressStore) UnlockBadge(_ context.Context, b *model.UserBadge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(b.UserID)
	if _, ok := u.badges[b.BadgeID]; ok {
		return false, nil
	}
	u.badges[b.BadgeID] = *b
	return true, nil
}

func (s *MemoryProgressStore) Ping(context.Context) error {
	return nil
}
