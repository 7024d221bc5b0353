package repository

import (
	"context"
	"trading_edu_backend/internal/model"
)

// ProgressStore persists learner progress with upsert-by-key semantics.
// Implementations: GormProgressStore (relational), RedisProgressStore
// (key/value) and MemoryProgressStore (ephemeral). A deployment uses one.
type ProgressStore interface {
	// LoadSnapshot returns everything stored for userID. A learner with no
	// rows yields an empty snapshot with a nil Progress.
	LoadSnapshot(ctx context.Context, userID string) (*model.Snapshot, error)

	// SaveUserProgress writes the cursor. Once a row exists its counters are
	// owned by CompleteModule and are left alone.
	SaveUserProgress(ctx context.Context, p *model.UserProgress) error
	// SaveModuleProgress writes the viewed flag and card index. Once a row
	// exists its completion fields are owned by CompleteModule.
	SaveModuleProgress(ctx context.Context, p *model.ModuleProgress) error

	// CompleteModule marks the module completed and writes the cursor in one
	// atomic step. The counter of level is incremented only when the stored
	// record flips to completed.
	CompleteModule(ctx context.Context, p *model.ModuleProgress, up *model.UserProgress, level model.Level) error

	SaveQuizResult(ctx context.Context, r *model.QuizResult) error

	// UnlockBadge inserts the unlock if absent and reports whether it did.
	UnlockBadge(ctx context.Context, b *model.UserBadge) (bool, error)

	Ping(ctx context.Context) error
}

// mergeUserProgress 保留已存储的计数器，只采用 next 的游标
func mergeUserProgress(prev *model.UserProgress, next model.UserProgress) model.UserProgress {
	if prev != nil {
		for _, level := range model.Levels {
			next.SetCompleted(level, prev.Completed(level))
		}
	}
	return next
}

// mergeModuleProgress 保留已存储的完成状态
func mergeModuleProgress(prev *model.ModuleProgress, next model.ModuleProgress) model.ModuleProgress {
	if prev != nil {
		next.Completed = prev.Completed
		next.CompletedAt = prev.CompletedAt
	}
	return next
}

// completeModule 计算完成后的两条记录。已完成的模块保留原完成时间且不重复计数；
// 没有已存储游标时直接采用 up。
func completeModule(prevMod *model.ModuleProgress, prevUser *model.UserProgress, p model.ModuleProgress, up model.UserProgress, level model.Level) (model.ModuleProgress, model.UserProgress) {
	firstTime := prevMod == nil || !prevMod.Completed
	p.Completed = true
	if !firstTime {
		p.CompletedAt = prevMod.CompletedAt
	}
	if prevUser == nil {
		return p, up
	}
	up = mergeUserProgress(prevUser, up)
	if firstTime {
		up.IncrementCompleted(level)
	}
	return p, up
}
