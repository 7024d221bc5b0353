package service

import (
	"fmt"
	"trading_edu_backend/internal/model"
)

// levelBadgeThresholds 精确匹配：计数跳过某个值后，对应徽章不会再解锁
var levelBadgeThresholds = []struct {
	count int
	tag   string
}{
	{1, "starter"},
	{8, "half"},
	{15, "complete"},
}

// EvaluateLevelBadges returns the ids of the level badges earned when the
// completed counter of level reaches completed.
func EvaluateLevelBadges(level model.Level, completed int) []string {
	var ids []string
	for _, th := range levelBadgeThresholds {
		if completed == th.count {
			ids = append(ids, fmt.Sprintf("%s-%s", level, th.tag))
		}
	}
	return ids
}

// EvaluateQuizBadges 返回一次完成的测验满足的解锁条件
// firstCompleted is true when no completed quiz record existed before it.
func EvaluateQuizBadges(result model.QuizResult, firstCompleted bool) []model.BadgeCondition {
	if !result.Completed {
		return nil
	}
	var conds []model.BadgeCondition
	if firstCompleted {
		conds = append(conds, model.ConditionFirstQuiz)
	}
	if result.Score == 100 {
		conds = append(conds, model.ConditionPerfectScore)
	}
	return conds
}
