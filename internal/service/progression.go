package service

import (
	"trading_edu_backend/internal/catalog"
	"trading_edu_backend/internal/model"
)

// Transition is where a learner goes after completing a module. It is
// applied and persisted immediately; clients decide when to show it.
type Transition struct {
	FromModuleID   string      `json:"fromModuleId"`
	FromLevel      model.Level `json:"fromLevel"`
	ToModuleID     string      `json:"toModuleId,omitempty"`
	ToLevel        model.Level `json:"toLevel"`
	LevelUp        bool        `json:"levelUp"`
	CourseComplete bool        `json:"courseComplete"`
}

// NextStep computes the transition out of moduleID. ok is false when the
// module is not in the catalog.
func NextStep(cat *catalog.Catalog, moduleID string) (t Transition, ok bool) {
	m, found := cat.Module(moduleID)
	if !found {
		return Transition{}, false
	}
	pos, _ := cat.Position(moduleID)

	t = Transition{FromModuleID: m.ID, FromLevel: m.Level, ToLevel: m.Level}

	modules := cat.Modules(m.Level)
	if pos < len(modules)-1 {
		t.ToModuleID = modules[pos+1].ID
		return t, true
	}

	// 本等级最后一个模块：进入下一个非空等级的第一个模块
	for level, more := m.Level.Next(); more; level, more = level.Next() {
		if first, ok := cat.FirstModule(level); ok {
			t.ToLevel = level
			t.ToModuleID = first.ID
			t.LevelUp = true
			return t, true
		}
	}

	t.ToModuleID = m.ID
	t.CourseComplete = true
	return t, true
}
