package repository

import (
	"context"
	"errors"
	"fmt"
	"time"
	"trading_edu_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormProgressStore struct {
	DB *gorm.DB
}

func NewGormProgressStore(db *gorm.DB) *GormProgressStore {
	return &GormProgressStore{DB: db}
}

func (r *GormProgressStore) LoadSnapshot(ctx context.Context, userID string) (*model.Snapshot, error) {
	db := r.DB.WithContext(ctx)
	snap := &model.Snapshot{}

	var up model.UserProgress
	err := db.Where("user_id = ?", userID).Take(&up).Error
	switch {
	case err == nil:
		snap.Progress = &up
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("loading user progress: %w", err)
	}

	if err := db.Where("user_id = ?", userID).Find(&snap.Modules).Error; err != nil {
		return nil, fmt.Errorf("loading module progress: %w", err)
	}
	if err := db.Where("user_id = ?", userID).Find(&snap.QuizResults).Error; err != nil {
		return nil, fmt.Errorf("loading quiz results: %w", err)
	}
	if err := db.Where("user_id = ?", userID).Order("unlocked_at").Find(&snap.Badges).Error; err != nil {
		return nil, fmt.Errorf("loading badges: %w", err)
	}

	return snap, nil
}

func (r *GormProgressStore) SaveUserProgress(ctx context.Context, p *model.UserProgress) error {
	return upsertUserProgress(r.DB.WithContext(ctx), p)
}

func (r *GormProgressStore) SaveModuleProgress(ctx context.Context, p *model.ModuleProgress) error {
	return upsertModuleProgress(r.DB.WithContext(ctx), p)
}

// CompleteModule 在同一事务内标记模块完成并更新游标
// 只有 completed 从 false 变为 true 时才给对应等级的计数器加一
func (r *GormProgressStore) CompleteModule(ctx context.Context, p *model.ModuleProgress, up *model.UserProgress, level model.Level) error {
	col, err := counterColumn(level)
	if err != nil {
		return err
	}
	completedAt := time.Now()
	if p.CompletedAt != nil {
		completedAt = *p.CompletedAt
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 新行先以未完成状态插入，再由下面的条件更新翻转
		pending := *p
		pending.Completed = false
		pending.CompletedAt = nil
		if err := upsertModuleProgress(tx, &pending); err != nil {
			return err
		}

		res := tx.Model(&model.ModuleProgress{}).
			Where("user_id = ? AND module_id = ? AND completed = ?", p.UserID, p.ModuleID, false).
			Updates(map[string]interface{}{"completed": true, "completed_at": completedAt})
		if res.Error != nil {
			return fmt.Errorf("completing module: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// 已经完成过，只更新游标
			return upsertUserProgress(tx, up)
		}

		res = tx.Model(&model.UserProgress{}).
			Where("user_id = ?", up.UserID).
			Updates(map[string]interface{}{
				col:                  gorm.Expr(col+" + ?", 1),
				"current_level":      up.CurrentLevel,
				"current_module_id":  up.CurrentModuleID,
				"current_card_index": up.CurrentCardIndex,
				"last_activity":      up.LastActivity,
			})
		if res.Error != nil {
			return fmt.Errorf("incrementing %s: %w", col, res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
		rec := *up
		rec.ID = 0
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("saving user progress: %w", err)
		}
		return nil
	})
}

func (r *GormProgressStore) SaveQuizResult(ctx context.Context, res *model.QuizResult) error {
	rec := *res
	rec.ID = 0
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"completed", "passed", "score", "total_questions",
			"time_spent_seconds", "attempts", "completed_at", "updated_at",
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("saving quiz result: %w", err)
	}
	return nil
}

func (r *GormProgressStore) UnlockBadge(ctx context.Context, b *model.UserBadge) (bool, error) {
	rec := *b
	rec.ID = 0
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return false, fmt.Errorf("unlocking badge: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormProgressStore) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Reconcile rewrites every learner's level counters from their completed
// module records. levelOf maps a module id to its level; modules it does not
// know are skipped. It returns the number of learners whose counters changed.
func (r *GormProgressStore) Reconcile(ctx context.Context, levelOf func(moduleID string) (model.Level, bool)) (int, error) {
	db := r.DB.WithContext(ctx)
	changed := 0

	var batch []model.UserProgress
	err := db.FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
		for i := range batch {
			up := &batch[i]

			var done []model.ModuleProgress
			if err := db.Where("user_id = ? AND completed = ?", up.UserID, true).Find(&done).Error; err != nil {
				return err
			}

			counts := make(map[model.Level]int, len(model.Levels))
			for _, mp := range done {
				if level, ok := levelOf(mp.ModuleID); ok {
					counts[level]++
				}
			}

			dirty := false
			for _, level := range model.Levels {
				if up.Completed(level) != counts[level] {
					up.SetCompleted(level, counts[level])
					dirty = true
				}
			}
			if !dirty {
				continue
			}
			err := db.Model(&model.UserProgress{}).Where("user_id = ?", up.UserID).Updates(map[string]interface{}{
				"completed_basics":       up.CompletedBasics,
				"completed_intermediate": up.CompletedIntermediate,
				"completed_pro":          up.CompletedPro,
			}).Error
			if err != nil {
				return err
			}
			changed++
		}
		return nil
	}).Error
	if err != nil {
		return changed, fmt.Errorf("reconciling counters: %w", err)
	}
	return changed, nil
}

// upsertUserProgress 插入时写入全部字段，冲突时只更新游标，计数器由 CompleteModule 维护
func upsertUserProgress(db *gorm.DB, p *model.UserProgress) error {
	rec := *p
	rec.ID = 0
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_level", "current_module_id", "current_card_index",
			"last_activity", "updated_at",
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("saving user progress: %w", err)
	}
	return nil
}

// upsertModuleProgress 冲突时不改动 completed 与 completed_at
func upsertModuleProgress(db *gorm.DB, p *model.ModuleProgress) error {
	rec := *p
	rec.ID = 0
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"viewed", "current_card_index", "updated_at",
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("saving module progress: %w", err)
	}
	return nil
}

func counterColumn(level model.Level) (string, error) {
	switch level {
	case model.LevelBasics:
		return "completed_basics", nil
	case model.LevelIntermediate:
		return "completed_intermediate", nil
	case model.LevelPro:
		return "completed_pro", nil
	}
	return "", fmt.Errorf("unknown level %q", level)
}
