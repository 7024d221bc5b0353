package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"
	"trading_edu_backend/internal/catalog"
	"trading_edu_backend/internal/model"
	"trading_edu_backend/internal/repository"
	"trading_edu_backend/internal/util"
	"trading_edu_backend/pkg/logger"
	"trading_edu_backend/pkg/monitoring"
	"trading_edu_backend/pkg/tracing"

	"go.uber.org/zap"
)

// loadRetryInterval 临时会话两次重新加载之间的最小间隔
const loadRetryInterval = 30 * time.Second

// ProgressService 学习进度服务，负责所有进度变更
// 先修改内存中的会话，再写入存储；写入失败只记录日志，以内存状态为准
type ProgressService struct {
	Store    repository.ProgressStore
	Catalog  *catalog.Catalog
	Notifier Notifier
	Storage  *StorageService

	mu       sync.Mutex
	sessions map[string]*LearnerSession

	perLevelMu      sync.RWMutex
	modulesPerLevel map[model.Level]int

	now func() time.Time
}

func NewProgressService(
	store repository.ProgressStore,
	cat *catalog.Catalog,
	notifier Notifier,
	storage *StorageService,
	modulesPerLevel map[string]int,
) *ProgressService {
	s := &ProgressService{
		Store:    store,
		Catalog:  cat,
		Notifier: notifier,
		Storage:  storage,
		sessions: make(map[string]*LearnerSession),
		now:      time.Now,
	}
	s.SetModulesPerLevel(modulesPerLevel)
	return s
}

type Cursor struct {
	Level          model.Level `json:"currentLevel"`
	ModuleID       string      `json:"currentModuleId"`
	CardIndex      int         `json:"currentCardIndex"`
	CardCount      int         `json:"cardCount"`
	AutoLaunchQuiz string      `json:"autoLaunchQuiz,omitempty"`
}

type QuizSubmission struct {
	ModuleID         string `json:"moduleId" binding:"required"`
	Passed           bool   `json:"passed"`
	Score            int    `json:"score"`
	TotalQuestions   int    `json:"totalQuestions"`
	TimeSpentSeconds int    `json:"timeSpent"`
}

type QuizRecordResult struct {
	Result          model.QuizResult `json:"result"`
	ModuleCompleted bool             `json:"moduleCompleted"`
	CompletedCount  int              `json:"completedCount"`
	Transition      *Transition      `json:"transition,omitempty"`
	UnlockedBadges  []BadgeView      `json:"unlockedBadges,omitempty"`
	Cursor          Cursor           `json:"cursor"`
}

type BadgeView struct {
	model.BadgeDefinition
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

type Percentages struct {
	Overall      int `json:"overall"`
	Basics       int `json:"basics"`
	Intermediate int `json:"intermediate"`
	Pro          int `json:"pro"`
}

type ProgressView struct {
	Cursor
	CompletedModules map[model.Level]int         `json:"completedModules"`
	Percentages      Percentages                 `json:"percentages"`
	ModuleProgress   map[string]bool             `json:"moduleProgress"`
	ViewedModules    map[string]bool             `json:"viewedModules"`
	QuizResults      map[string]model.QuizResult `json:"quizResults"`
	Badges           []BadgeView                 `json:"badges"`
	LastActivity     time.Time                   `json:"lastActivity"`
}

type ModuleStatus struct {
	ModuleID         string `json:"moduleId"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	CardCount        int    `json:"cardCount"`
	IsCompleted      bool   `json:"isCompleted"`
	IsViewed         bool   `json:"isViewed"`
	IsLocked         bool   `json:"isLocked"`
	IsActive         bool   `json:"isActive"`
}

type Stats struct {
	TotalModules   int `json:"totalModules"`
	CompletedCount int `json:"completedCount"`
	QuizzesTaken   int `json:"quizzesTaken"`
	AverageScore   int `json:"averageScore"`
	TotalTimeSpent int `json:"totalTimeSpent"`
	BadgesEarned   int `json:"badgesEarned"`
}

// SetModulesPerLevel replaces the percentage divisors. Missing or zero
// entries fall back to the catalog's module count for that level.
func (s *ProgressService) SetModulesPerLevel(counts map[string]int) {
	m := make(map[model.Level]int, len(counts))
	for name, n := range counts {
		level, err := model.ParseLevel(name)
		if err != nil {
			logger.Log.Warn("忽略未知等级的 modules_per_level 配置", zap.String("level", name))
			continue
		}
		m[level] = n
	}
	s.perLevelMu.Lock()
	s.modulesPerLevel = m
	s.perLevelMu.Unlock()
}

func (s *ProgressService) ModulesPerLevel(level model.Level) int {
	s.perLevelMu.RLock()
	n := s.modulesPerLevel[level]
	s.perLevelMu.RUnlock()
	if n > 0 {
		return n
	}
	return s.Catalog.ModuleCount(level)
}

// session 返回学员的内存会话，首次使用时从存储加载
// 加载失败时缓存一个临时会话，只要它没有本地修改，之后会重新尝试加载
func (s *ProgressService) session(ctx context.Context, userID string) (*LearnerSession, error) {
	if userID == "" {
		logger.Log.Warn("缺少用户ID的学习进度操作")
		return nil, util.ErrMissingUser
	}

	now := s.now()
	s.mu.Lock()
	cached, ok := s.sessions[userID]
	s.mu.Unlock()
	if ok && !cached.reloadable(now) {
		return cached, nil
	}

	snap, err := s.Store.LoadSnapshot(ctx, userID)
	if err != nil {
		s.persistFailed("load_snapshot", userID, err)
		if ok {
			cached.mu.Lock()
			cached.nextLoad = now.Add(loadRetryInterval)
			cached.mu.Unlock()
			return cached, nil
		}
		eph := newLearnerSession(userID, &model.Snapshot{})
		eph.ephemeral = true
		eph.nextLoad = now.Add(loadRetryInterval)
		return s.install(userID, eph, nil), nil
	}
	return s.install(userID, newLearnerSession(userID, snap), cached), nil
}

// install 缓存 fresh。已缓存的其他会话优先；replace 只有在仍是未修改的临时会话时才会被替换
func (s *ProgressService) install(userID string, fresh, replace *LearnerSession) *LearnerSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[userID]
	if !ok {
		s.sessions[userID] = fresh
		monitoring.ActiveSessions.Inc()
		return fresh
	}
	if cur != replace {
		return cur
	}

	cur.mu.Lock()
	defer cur.mu.Unlock()
	if !cur.ephemeral || cur.dirty {
		return cur
	}
	fresh.autoLaunchQuiz = cur.autoLaunchQuiz
	fresh.logoutNotified = cur.logoutNotified
	s.sessions[userID] = fresh
	return fresh
}

func (s *ProgressService) persistFailed(op, userID string, err error) {
	monitoring.PersistenceErrors.WithLabelValues(op).Inc()
	logger.Log.Error("持久化学习进度失败",
		zap.String("op", op),
		zap.String("userId", userID),
		zap.Error(err),
	)
}

// save 执行一次存储写入，错误只记录不返回
func (s *ProgressService) save(ctx context.Context, sess *LearnerSession, op string, write func(context.Context) error) {
	if sess.ephemeral {
		sess.dirty = true
		return
	}
	if err := write(ctx); err != nil {
		s.persistFailed(op, sess.userID, err)
	}
}

func (s *ProgressService) notify(ctx context.Context, n Notification) {
	if s.Notifier != nil {
		s.Notifier.Notify(ctx, n)
	}
}

func (s *ProgressService) cursor(sess *LearnerSession) Cursor {
	up := sess.progress
	c := Cursor{
		Level:          up.CurrentLevel,
		ModuleID:       up.CurrentModuleID,
		CardIndex:      up.CurrentCardIndex,
		AutoLaunchQuiz: sess.autoLaunchQuiz,
	}
	if m, ok := s.Catalog.Module(up.CurrentModuleID); ok {
		c.CardCount = len(m.Flashcards)
	}
	return c
}

func (s *ProgressService) currentModule(sess *LearnerSession) (*model.LearningModule, error) {
	id := sess.progress.CurrentModuleID
	if id == "" {
		return nil, util.ErrNoModuleSelected
	}
	m, ok := s.Catalog.Module(id)
	if !ok {
		return nil, util.ErrModuleNotFound
	}
	return m, nil
}

// SelectModule makes moduleID the learner's current module and restores the
// card position saved for it.
func (s *ProgressService) SelectModule(ctx context.Context, userID, moduleID string) (*Cursor, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.SelectModule")
	defer span.End()

	m, ok := s.Catalog.Module(moduleID)
	if !ok {
		return nil, util.ErrModuleNotFound
	}
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	idx := 0
	if mp, ok := sess.modules[moduleID]; ok {
		idx = clampCard(mp.CurrentCardIndex, len(m.Flashcards))
	}
	if sess.autoLaunchQuiz != moduleID {
		sess.autoLaunchQuiz = ""
	}

	up := sess.progress
	up.CurrentLevel = m.Level
	up.CurrentModuleID = moduleID
	up.CurrentCardIndex = idx
	up.LastActivity = s.now()
	s.save(ctx, sess, "save_user_progress", func(ctx context.Context) error {
		return s.Store.SaveUserProgress(ctx, up)
	})

	c := s.cursor(sess)
	return &c, nil
}

// MarkModuleViewed records the first view of a module. Later calls write
// nothing.
func (s *ProgressService) MarkModuleViewed(ctx context.Context, userID, moduleID string) error {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.MarkModuleViewed")
	defer span.End()

	if _, ok := s.Catalog.Module(moduleID); !ok {
		return util.ErrModuleNotFound
	}
	sess, err := s.session(ctx, userID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if mp, ok := sess.modules[moduleID]; ok && mp.Viewed {
		return nil
	}
	mp := sess.module(moduleID)
	mp.Viewed = true
	s.save(ctx, sess, "save_module_progress", func(ctx context.Context) error {
		return s.Store.SaveModuleProgress(ctx, mp)
	})
	return nil
}

// AdvanceCard moves to the next flashcard. On the last card the index stays
// put and the module's quiz is flagged for auto-launch instead.
func (s *ProgressService) AdvanceCard(ctx context.Context, userID string) (*Cursor, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.AdvanceCard")
	defer span.End()

	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	m, err := s.currentModule(sess)
	if err != nil {
		return nil, err
	}

	up := sess.progress
	cards := len(m.Flashcards)
	if cards == 0 || up.CurrentCardIndex >= cards-1 {
		if sess.autoLaunchQuiz != m.ID {
			sess.autoLaunchQuiz = m.ID
			s.notify(ctx, Notification{
				UserID:   userID,
				Kind:     NotifyQuizReady,
				Title:    "Module complete!",
				Message:  "You've reached the end of this module. The quiz will open automatically to test your knowledge.",
				ModuleID: m.ID,
			})
		}
		c := s.cursor(sess)
		return &c, nil
	}

	s.moveCard(ctx, sess, m.ID, up.CurrentCardIndex+1)
	c := s.cursor(sess)
	return &c, nil
}

// RetreatCard 回到上一张卡片，索引不会小于 0
func (s *ProgressService) RetreatCard(ctx context.Context, userID string) (*Cursor, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.RetreatCard")
	defer span.End()

	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	m, err := s.currentModule(sess)
	if err != nil {
		return nil, err
	}
	if sess.progress.CurrentCardIndex > 0 {
		s.moveCard(ctx, sess, m.ID, sess.progress.CurrentCardIndex-1)
	}
	c := s.cursor(sess)
	return &c, nil
}

func (s *ProgressService) moveCard(ctx context.Context, sess *LearnerSession, moduleID string, idx int) {
	up := sess.progress
	up.CurrentCardIndex = idx
	up.LastActivity = s.now()
	mp := sess.module(moduleID)
	mp.CurrentCardIndex = idx

	s.save(ctx, sess, "save_module_progress", func(ctx context.Context) error {
		return s.Store.SaveModuleProgress(ctx, mp)
	})
	s.save(ctx, sess, "save_user_progress", func(ctx context.Context) error {
		return s.Store.SaveUserProgress(ctx, up)
	})
}

// RecordQuizResult stores a quiz attempt. A first pass completes the module:
// the level counter is incremented together with the completion flag, level
// badges are evaluated and the learner moves on to the next module.
func (s *ProgressService) RecordQuizResult(ctx context.Context, userID string, sub QuizSubmission) (*QuizRecordResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.RecordQuizResult")
	defer span.End()

	m, ok := s.Catalog.Module(sub.ModuleID)
	if !ok {
		return nil, util.ErrModuleNotFound
	}
	if sub.Score < 0 || sub.Score > 100 || sub.TotalQuestions < 0 || sub.TimeSpentSeconds < 0 {
		return nil, util.ErrInvalidInput
	}
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := s.now()
	firstCompleted := !sess.hasCompletedQuiz()

	// 记录本次测验结果
	qr := sess.quizResult(m.ID)
	qr.Completed = true
	qr.Passed = sub.Passed
	qr.Score = sub.Score
	qr.TotalQuestions = sub.TotalQuestions
	qr.TimeSpentSeconds = sub.TimeSpentSeconds
	qr.Attempts++
	qr.CompletedAt = now
	s.save(ctx, sess, "save_quiz_result", func(ctx context.Context) error {
		return s.Store.SaveQuizResult(ctx, qr)
	})
	monitoring.QuizResults.WithLabelValues(string(m.Level), strconv.FormatBool(sub.Passed)).Inc()

	if sess.autoLaunchQuiz == m.ID {
		sess.autoLaunchQuiz = ""
	}

	// 测验类徽章
	out := &QuizRecordResult{}
	for _, cond := range EvaluateQuizBadges(*qr, firstCompleted) {
		for _, def := range s.Catalog.BadgesWithCondition(cond) {
			if v, ok := s.unlock(ctx, sess, def, now); ok {
				out.UnlockedBadges = append(out.UnlockedBadges, v)
			}
		}
	}

	// 首次通过才算完成模块
	mp := sess.module(m.ID)
	if sub.Passed && !mp.Completed {
		up := sess.progress
		mp.Completed = true
		mp.CompletedAt = &now
		count := up.IncrementCompleted(m.Level)

		t, _ := NextStep(s.Catalog, m.ID)
		s.applyTransition(sess, t)
		up.LastActivity = now

		s.save(ctx, sess, "complete_module", func(ctx context.Context) error {
			return s.Store.CompleteModule(ctx, mp, up, m.Level)
		})
		monitoring.ModuleCompletions.WithLabelValues(string(m.Level)).Inc()

		s.notify(ctx, Notification{
			UserID:   userID,
			Kind:     NotifyModuleCompleted,
			Title:    "Module completed!",
			Message:  fmt.Sprintf("You passed the %s quiz with %d%%.", m.Title, sub.Score),
			ModuleID: m.ID,
		})

		// 等级徽章
		for _, id := range EvaluateLevelBadges(m.Level, count) {
			def, ok := s.Catalog.Badge(id)
			if !ok {
				continue
			}
			if v, ok := s.unlock(ctx, sess, *def, now); ok {
				out.UnlockedBadges = append(out.UnlockedBadges, v)
			}
		}

		s.notifyTransition(ctx, userID, t)
		out.ModuleCompleted = true
		out.Transition = &t
	}

	out.Result = *qr
	out.CompletedCount = sess.progress.Completed(m.Level)
	out.Cursor = s.cursor(sess)
	return out, nil
}

func (s *ProgressService) applyTransition(sess *LearnerSession, t Transition) {
	idx := 0
	if mp, ok := sess.modules[t.ToModuleID]; ok {
		idx = mp.CurrentCardIndex
	}
	if m, ok := s.Catalog.Module(t.ToModuleID); ok {
		idx = clampCard(idx, len(m.Flashcards))
	}
	up := sess.progress
	up.CurrentLevel = t.ToLevel
	up.CurrentModuleID = t.ToModuleID
	up.CurrentCardIndex = idx
}

func (s *ProgressService) notifyTransition(ctx context.Context, userID string, t Transition) {
	switch {
	case t.CourseComplete:
		s.notify(ctx, Notification{
			UserID:   userID,
			Kind:     NotifyCourseComplete,
			Title:    "Course complete!",
			Message:  "You have finished every module of the trading course.",
			ModuleID: t.FromModuleID,
		})
	case t.LevelUp:
		s.notify(ctx, Notification{
			UserID:   userID,
			Kind:     NotifyLevelUp,
			Title:    "Level up!",
			Message:  fmt.Sprintf("You have unlocked the %s level.", t.ToLevel),
			ModuleID: t.ToModuleID,
		})
	}
}

// unlock grants a badge once. ok is false when the learner already had it.
func (s *ProgressService) unlock(ctx context.Context, sess *LearnerSession, def model.BadgeDefinition, now time.Time) (BadgeView, bool) {
	if _, ok := sess.badges[def.ID]; ok {
		return BadgeView{}, false
	}
	ub := model.UserBadge{UserID: sess.userID, BadgeID: def.ID, UnlockedAt: now}
	sess.badges[def.ID] = ub

	if sess.ephemeral {
		sess.dirty = true
	} else {
		created, err := s.Store.UnlockBadge(ctx, &ub)
		if err != nil {
			s.persistFailed("unlock_badge", sess.userID, err)
		} else if !created {
			// 同一学员的其他会话已经解锁
			return BadgeView{}, false
		}
	}

	monitoring.BadgeUnlocks.WithLabelValues(def.ID).Inc()
	v := s.badgeView(ctx, def, &ub)
	s.notify(ctx, Notification{
		UserID:  sess.userID,
		Kind:    NotifyBadgeUnlocked,
		Title:   "Badge unlocked!",
		Message: fmt.Sprintf("You earned the %s badge: %s", def.Name, def.Description),
		BadgeID: def.ID,
		Image:   v.Image,
	})
	return v, true
}

func (s *ProgressService) badgeView(ctx context.Context, def model.BadgeDefinition, ub *model.UserBadge) BadgeView {
	v := BadgeView{BadgeDefinition: def}
	v.Image = s.Storage.ResolveImage(ctx, def.Image)
	if ub != nil {
		at := ub.UnlockedAt
		v.Unlocked = true
		v.UnlockedAt = &at
	}
	return v
}

// SetLevel 切换学员正在浏览的等级
func (s *ProgressService) SetLevel(ctx context.Context, userID string, level model.Level) (*Cursor, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.SetLevel")
	defer span.End()

	if !level.Valid() {
		return nil, util.ErrLevelNotFound
	}
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	up := sess.progress
	if up.CurrentLevel != level {
		up.CurrentLevel = level
		up.LastActivity = s.now()
		s.save(ctx, sess, "save_user_progress", func(ctx context.Context) error {
			return s.Store.SaveUserProgress(ctx, up)
		})
	}
	c := s.cursor(sess)
	return &c, nil
}

// ClearAutoLaunch 客户端打开测验后清除自动弹出标记
func (s *ProgressService) ClearAutoLaunch(ctx context.Context, userID string) error {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	sess.autoLaunchQuiz = ""
	sess.mu.Unlock()
	return nil
}

func (s *ProgressService) Snapshot(ctx context.Context, userID string) (*ProgressView, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.Snapshot")
	defer span.End()

	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	up := sess.progress
	v := &ProgressView{
		Cursor:           s.cursor(sess),
		CompletedModules: up.CompletedByLevel(),
		Percentages:      s.percentages(up),
		ModuleProgress:   make(map[string]bool, len(sess.modules)),
		ViewedModules:    make(map[string]bool, len(sess.modules)),
		QuizResults:      make(map[string]model.QuizResult, len(sess.quiz)),
		Badges:           s.badgeViews(ctx, sess),
		LastActivity:     up.LastActivity,
	}
	for id, mp := range sess.modules {
		v.ModuleProgress[id] = mp.Completed
		v.ViewedModules[id] = mp.Viewed
	}
	for id, qr := range sess.quiz {
		v.QuizResults[id] = *qr
	}
	return v, nil
}

func (s *ProgressService) percentages(up *model.UserProgress) Percentages {
	var done, total int
	per := make(map[model.Level]int, len(model.Levels))
	for _, level := range model.Levels {
		n, d := up.Completed(level), s.ModulesPerLevel(level)
		done += n
		total += d
		per[level] = percent(n, d)
	}
	return Percentages{
		Overall:      percent(done, total),
		Basics:       per[model.LevelBasics],
		Intermediate: per[model.LevelIntermediate],
		Pro:          per[model.LevelPro],
	}
}

func percent(n, d int) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(d)))
}

func (s *ProgressService) badgeViews(ctx context.Context, sess *LearnerSession) []BadgeView {
	defs := s.Catalog.Badges()
	out := make([]BadgeView, 0, len(defs))
	for _, def := range defs {
		var ub *model.UserBadge
		if b, ok := sess.badges[def.ID]; ok {
			ub = &b
		}
		out = append(out, s.badgeView(ctx, def, ub))
	}
	return out
}

// Badges 列出全部徽章及学员的解锁状态
func (s *ProgressService) Badges(ctx context.Context, userID string) ([]BadgeView, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.badgeViews(ctx, sess), nil
}

// ModuleStatuses reports, in order, whether each module of level is
// completed, locked behind its predecessor, or the current one.
func (s *ProgressService) ModuleStatuses(ctx context.Context, userID string, level model.Level) ([]ModuleStatus, error) {
	if !level.Valid() {
		return nil, util.ErrLevelNotFound
	}
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	modules := s.Catalog.Modules(level)
	out := make([]ModuleStatus, 0, len(modules))
	for i, m := range modules {
		st := ModuleStatus{
			ModuleID:         m.ID,
			Title:            m.Title,
			Description:      m.Description,
			EstimatedMinutes: m.EstimatedMinutes,
			CardCount:        len(m.Flashcards),
			IsCompleted:      sess.isCompleted(m.ID),
			IsActive:         m.ID == sess.progress.CurrentModuleID,
			IsLocked:         i > 0 && !sess.isCompleted(modules[i-1].ID),
		}
		if mp, ok := sess.modules[m.ID]; ok {
			st.IsViewed = mp.Viewed
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *ProgressService) Stats(ctx context.Context, userID string) (*Stats, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	st := &Stats{
		TotalModules: s.Catalog.TotalModules(),
		BadgesEarned: len(sess.badges),
	}
	for _, mp := range sess.modules {
		if mp.Completed {
			st.CompletedCount++
		}
	}
	var scored, scoreSum int
	for _, qr := range sess.quiz {
		if !qr.Completed {
			continue
		}
		st.QuizzesTaken += qr.Attempts
		st.TotalTimeSpent += qr.TimeSpentSeconds
		scoreSum += qr.Score
		scored++
	}
	if scored > 0 {
		st.AverageScore = int(math.Round(float64(scoreSum) / float64(scored)))
	}
	return st, nil
}

// EndSession drops the learner's in-memory state. The signed-out notice is
// raised once per session; ended reports whether a session existed.
func (s *ProgressService) EndSession(ctx context.Context, userID string) (ended bool) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
		monitoring.ActiveSessions.Dec()
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.logoutNotified {
		sess.logoutNotified = true
		s.notify(ctx, Notification{
			UserID:  userID,
			Kind:    NotifySignedOut,
			Title:   "Signed out",
			Message: "Your learning progress has been saved.",
		})
	}
	return true
}
