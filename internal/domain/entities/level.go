package entities

const (
	XPPerAyah  = 10  // experience granted for every ayah read
	XPPerLevel = 500 // experience needed to gain one level
)

// Level is the gamified standing derived from lifetime ayahs read.
type Level struct {
	XP         int `json:"xp"`
	Level      int `json:"level"`
	XPInLevel  int `json:"xpInLevel"`
	XPPerLevel int `json:"xpPerLevel"`
}

// LevelFor computes XP and level for the given lifetime ayah count.
func LevelFor(totalAyahsRead int) Level {
	xp := max(totalAyahsRead, 0) * XPPerAyah
	return Level{
		XP:         xp,
		Level:      xp/XPPerLevel + 1,
		XPInLevel:  xp % XPPerLevel,
		XPPerLevel: XPPerLevel,
	}
}
