package services

// levelThresholds[i] is the XP floor of level i+1. The table is static and
// strictly increasing; level 1 starts at 0.
var levelThresholds = []int64{
	0,      // 1
	100,    // 2
	250,    // 3
	500,    // 4
	1000,   // 5
	2000,   // 6
	3500,   // 7
	5500,   // 8
	8000,   // 9
	11000,  // 10
	15000,  // 11
	20000,  // 12
	26500,  // 13
	34500,  // 14
	44500,  // 15
	57000,  // 16
	72500,  // 17
	91500,  // 18
	115000, // 19
	144000, // 20
	180000, // 21
	225000, // 22
	281000, // 23
	350000, // 24
	436000, // 25
}

// LevelForXP returns the highest level whose threshold xp has reached.
// Total over all non-negative inputs; negative inputs clamp to level 1.
func LevelForXP(xp int64) int {
	level := 1
	for i := 1; i < len(levelThresholds); i++ {
		if xp < levelThresholds[i] {
			break
		}
		level = i + 1
	}
	return level
}

// MaxLevel is the top of the curve; beyond it XP keeps accruing but the
// level plateaus.
func MaxLevel() int {
	return len(levelThresholds)
}

// LevelProgress is the breakdown returned alongside a profile.
type LevelProgress struct {
	Level             int   `json:"level"`
	CurrentLevelFloor int64 `json:"current_level_floor"`
	NextLevelFloor    int64 `json:"next_level_floor"`
	XPToNext          int64 `json:"xp_to_next"`
}

// ProgressForXP reports the current level, its floor, and the distance to
// the next floor. At the maximum level XPToNext is 0 and NextLevelFloor
// repeats the current floor.
func ProgressForXP(xp int64) LevelProgress {
	level := LevelForXP(xp)
	floor := levelThresholds[level-1]
	if level == MaxLevel() {
		return LevelProgress{Level: level, CurrentLevelFloor: floor, NextLevelFloor: floor, XPToNext: 0}
	}
	next := levelThresholds[level]
	toNext := next - xp
	if toNext < 0 {
		toNext = 0
	}
	return LevelProgress{Level: level, CurrentLevelFloor: floor, NextLevelFloor: next, XPToNext: toNext}
}
