// Package catalog holds the read-only course hierarchy: levels, their
// ordered modules with flashcards and quizzes, and the badge definitions.
package catalog

import (
	"fmt"
	"slices"
	"sort"
	"trading_edu_backend/internal/model"
)

// Catalog 课程目录的只读快照，可并发使用
type Catalog struct {
	byLevel map[model.Level][]model.LearningModule
	byID    map[string]*model.LearningModule
	badges  []model.BadgeDefinition
}

// New indexes modules and badges. Modules are ordered by sort order within
// their level; embedded questions inherit their module's id and level.
func New(modules []model.LearningModule, badges []model.BadgeDefinition) (*Catalog, error) {
	c := &Catalog{
		byLevel: make(map[model.Level][]model.LearningModule, len(model.Levels)),
		byID:    make(map[string]*model.LearningModule, len(modules)),
	}

	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if m.ID == "" {
			return nil, fmt.Errorf("module %q has no id", m.Title)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("duplicate module id %q", m.ID)
		}
		seen[m.ID] = true
		if !m.Level.Valid() {
			return nil, fmt.Errorf("module %q has unknown level %q", m.ID, m.Level)
		}

		// 复制后再排序和打标记，不修改调用方的切片
		m.Flashcards = slices.Clone(m.Flashcards)
		m.Questions = slices.Clone(m.Questions)
		sort.SliceStable(m.Flashcards, func(i, j int) bool {
			return m.Flashcards[i].SortOrder < m.Flashcards[j].SortOrder
		})
		for i := range m.Flashcards {
			m.Flashcards[i].ModuleID = m.ID
		}
		for i := range m.Questions {
			q := &m.Questions[i]
			q.ModuleID = m.ID
			q.Level = m.Level
			if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
				return nil, fmt.Errorf("question %q of module %q: correct answer %d out of range", q.ID, m.ID, q.CorrectAnswer)
			}
		}
		c.byLevel[m.Level] = append(c.byLevel[m.Level], m)
	}

	for level, list := range c.byLevel {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].SortOrder < list[j].SortOrder
		})
		for i := range list {
			c.byID[list[i].ID] = &list[i]
		}
		c.byLevel[level] = list
	}

	badgeIDs := make(map[string]bool, len(badges))
	for _, b := range badges {
		if badgeIDs[b.ID] {
			return nil, fmt.Errorf("duplicate badge id %q", b.ID)
		}
		badgeIDs[b.ID] = true
	}
	c.badges = append([]model.BadgeDefinition(nil), badges...)

	return c, nil
}

// Modules returns the modules of level in progression order.
func (c *Catalog) Modules(level model.Level) []model.LearningModule {
	return c.byLevel[level]
}

// Module 按 id 查找模块
func (c *Catalog) Module(id string) (*model.LearningModule, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// Position returns the zero-based index of the module within its level.
func (c *Catalog) Position(id string) (int, bool) {
	m, ok := c.byID[id]
	if !ok {
		return 0, false
	}
	for i, other := range c.byLevel[m.Level] {
		if other.ID == id {
			return i, true
		}
	}
	return 0, false
}

// FirstModule 返回该等级排序最靠前的模块
func (c *Catalog) FirstModule(level model.Level) (*model.LearningModule, bool) {
	list := c.byLevel[level]
	if len(list) == 0 {
		return nil, false
	}
	return &list[0], true
}

func (c *Catalog) ModuleCount(level model.Level) int {
	return len(c.byLevel[level])
}

func (c *Catalog) TotalModules() int {
	return len(c.byID)
}

// AllModules returns every module, level by level.
func (c *Catalog) AllModules() []model.LearningModule {
	out := make([]model.LearningModule, 0, len(c.byID))
	for _, l := range model.Levels {
		out = append(out, c.byLevel[l]...)
	}
	return out
}

func (c *Catalog) Badges() []model.BadgeDefinition {
	return c.badges
}

func (c *Catalog) Badge(id string) (*model.BadgeDefinition, bool) {
	for i := range c.badges {
		if c.badges[i].ID == id {
			return &c.badges[i], true
		}
	}
	return nil, false
}

// BadgesWithCondition returns the definitions unlocked by a tag rule.
func (c *Catalog) BadgesWithCondition(cond model.BadgeCondition) []model.BadgeDefinition {
	var out []model.BadgeDefinition
	for _, b := range c.badges {
		if b.Condition == cond {
			out = append(out, b)
		}
	}
	return out
}
