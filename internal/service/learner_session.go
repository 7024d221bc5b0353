package service

import (
	"sync"
	"time"
	"trading_edu_backend/internal/model"
)

// LearnerSession 已登录学员的内存状态
// 首次访问时从存储加载，会话结束前始终以它为准，写入失败也不例外
type LearnerSession struct {
	mu sync.Mutex

	userID   string
	progress *model.UserProgress
	modules  map[string]*model.ModuleProgress
	quiz     map[string]*model.QuizResult
	badges   map[string]model.UserBadge

	// 到达模块最后一张卡片时待自动弹出的测验
	autoLaunchQuiz string
	// 退出提示只显示一次
	logoutNotified bool
	// 加载失败时的临时会话：保留在内存中但从不写库
	ephemeral bool
	// 临时会话已有本地修改，不能再被重新加载的数据替换
	dirty bool
	// 下次重试加载的时间
	nextLoad time.Time
}

// reloadable reports whether an ephemeral session may be swapped for a
// freshly loaded one.
func (s *LearnerSession) reloadable(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ephemeral && !s.dirty && !now.Before(s.nextLoad)
}

func newLearnerSession(userID string, snap *model.Snapshot) *LearnerSession {
	sess := &LearnerSession{
		userID:  userID,
		modules: make(map[string]*model.ModuleProgress, len(snap.Modules)),
		quiz:    make(map[string]*model.QuizResult, len(snap.QuizResults)),
		badges:  make(map[string]model.UserBadge, len(snap.Badges)),
	}
	if snap.Progress != nil {
		p := *snap.Progress
		sess.progress = &p
	} else {
		sess.progress = model.NewUserProgress(userID)
	}
	for i := range snap.Modules {
		mp := snap.Modules[i]
		sess.modules[mp.ModuleID] = &mp
	}
	for i := range snap.QuizResults {
		qr := snap.QuizResults[i]
		sess.quiz[qr.ModuleID] = &qr
	}
	for _, b := range snap.Badges {
		sess.badges[b.BadgeID] = b
	}
	return sess
}

// module returns the record for moduleID, creating it in memory if needed.
func (s *LearnerSession) module(moduleID string) *model.ModuleProgress {
	mp, ok := s.modules[moduleID]
	if !ok {
		mp = &model.ModuleProgress{UserID: s.userID, ModuleID: moduleID}
		s.modules[moduleID] = mp
	}
	return mp
}

func (s *LearnerSession) quizResult(moduleID string) *model.QuizResult {
	qr, ok := s.quiz[moduleID]
	if !ok {
		qr = &model.QuizResult{UserID: s.userID, ModuleID: moduleID}
		s.quiz[moduleID] = qr
	}
	return qr
}

func (s *LearnerSession) hasCompletedQuiz() bool {
	for _, qr := range s.quiz {
		if qr.Completed {
			return true
		}
	}
	return false
}

func (s *LearnerSession) isCompleted(moduleID string) bool {
	mp, ok := s.modules[moduleID]
	return ok && mp.Completed
}

func clampCard(index, cards int) int {
	if index < 0 {
		return 0
	}
	if index > cards {
		return cards
	}
	return index
}
