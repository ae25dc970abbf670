package services

import "testing"

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		name string
		xp   int64
		want int
	}{
		{"zero", 0, 1},
		{"below first threshold", 99, 1},
		{"exactly level 2", 100, 2},
		{"just below level 3", 249, 2},
		{"exactly level 3", 250, 3},
		{"mid level 3", 450, 3},
		{"exactly level 4", 500, 4},
		{"exactly level 5", 1000, 5},
		{"just below max", 435999, 24},
		{"exactly max", 436000, 25},
		{"beyond max plateaus", 10_000_000, 25},
		{"negative clamps to 1", -50, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LevelForXP(tc.xp); got != tc.want {
				t.Errorf("LevelForXP(%d) = %d, want %d", tc.xp, got, tc.want)
			}
		})
	}
}

func TestLevelThresholdsStrictlyIncreasing(t *testing.T) {
	for i := 1; i < len(levelThresholds); i++ {
		if levelThresholds[i] <= levelThresholds[i-1] {
			t.Fatalf("threshold %d (%d) not greater than threshold %d (%d)",
				i, levelThresholds[i], i-1, levelThresholds[i-1])
		}
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := LevelForXP(0)
	for xp := int64(0); xp <= 500_000; xp += 137 {
		lvl := LevelForXP(xp)
		if lvl < prev {
			t.Fatalf("level decreased from %d to %d at xp=%d", prev, lvl, xp)
		}
		prev = lvl
	}
}

func TestProgressForXP(t *testing.T) {
	p := ProgressForXP(450)
	if p.Level != 3 {
		t.Fatalf("level = %d, want 3", p.Level)
	}
	if p.CurrentLevelFloor != 250 || p.NextLevelFloor != 500 {
		t.Fatalf("floors = %d/%d, want 250/500", p.CurrentLevelFloor, p.NextLevelFloor)
	}
	if p.XPToNext != 50 {
		t.Fatalf("xp to next = %d, want 50", p.XPToNext)
	}
}

func TestProgressForXPAtMaxLevel(t *testing.T) {
	p := ProgressForXP(999_999)
	if p.Level != MaxLevel() {
		t.Fatalf("level = %d, want %d", p.Level, MaxLevel())
	}
	if p.XPToNext != 0 {
		t.Fatalf("xp to next = %d, want 0 at max level", p.XPToNext)
	}
	if p.NextLevelFloor != p.CurrentLevelFloor {
		t.Fatalf("next floor %d should repeat current floor %d at max level",
			p.NextLevelFloor, p.CurrentLevelFloor)
	}
}
