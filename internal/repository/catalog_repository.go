package repository

import (
	"context"
	"fmt"
	"trading_edu_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

// ListModules 查询已发布的模块，包含卡片和内置题目
func (r *CatalogRepository) ListModules(ctx context.Context) ([]model.LearningModule, error) {
	var modules []model.LearningModule
	err := r.DB.WithContext(ctx).
		Where("published = ?", true).
		Preload("Flashcards", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc")
		}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Order("level asc, sort_order asc").
		Find(&modules).Error
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	return modules, nil
}

func (r *CatalogRepository) ListBadges(ctx context.Context) ([]model.BadgeDefinition, error) {
	var badges []model.BadgeDefinition
	if err := r.DB.WithContext(ctx).Order("id asc").Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("listing badges: %w", err)
	}
	return badges, nil
}

// FindQuizQuestions returns the remotely authored questions for a module at a
// level. An empty result is not an error.
func (r *CatalogRepository) FindQuizQuestions(ctx context.Context, moduleID string, level model.Level) ([]model.QuizQuestion, error) {
	var qs []model.QuizQuestion
	err := r.DB.WithContext(ctx).
		Where("module_id = ? AND level = ?", moduleID, level).
		Order("id asc").
		Find(&qs).Error
	if err != nil {
		return nil, fmt.Errorf("loading questions for %s: %w", moduleID, err)
	}
	return qs, nil
}

func (r *CatalogRepository) CountModules(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.LearningModule{}).Count(&n).Error
	return n, err
}

// SeedModules inserts the modules that have no row yet, together with their
// flashcards and questions. Existing modules are left untouched. It returns
// the ids that were inserted.
func (r *CatalogRepository) SeedModules(ctx context.Context, modules []model.LearningModule) ([]string, error) {
	var inserted []string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range modules {
			m := modules[i]

			var n int64
			if err := tx.Model(&model.LearningModule{}).Where("id = ?", m.ID).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("seeding module %s: %w", m.ID, err)
			}
			inserted = append(inserted, m.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// SeedBadges 插入缺少的徽章定义，返回新增数量
func (r *CatalogRepository) SeedBadges(ctx context.Context, badges []model.BadgeDefinition) (int64, error) {
	if len(badges) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&badges)
	if res.Error != nil {
		return 0, fmt.Errorf("seeding badges: %w", res.Error)
	}
	return res.RowsAffected, nil
}
