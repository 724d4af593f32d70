package rating

// Config holds the tunable numbers of the rating formula. Values are loaded
// from RATING_* environment variables with these defaults.
type Config struct {
	Floor             float64 `envconfig:"FLOOR" default:"10"`
	BaseWin           float64 `envconfig:"BASE_WIN" default:"20"`
	BaseLoss          float64 `envconfig:"BASE_LOSS" default:"15"`
	DemonMargin       int     `envconfig:"DEMON_MARGIN" default:"10"`
	StrengthRatioMin  float64 `envconfig:"STRENGTH_RATIO_MIN" default:"2"`
	StrengthRatioCap  float64 `envconfig:"STRENGTH_RATIO_CAP" default:"4"`
	StrengthBonusStep float64 `envconfig:"STRENGTH_BONUS_STEP" default:"10"`
}

// DefaultConfig returns the production tuning. Tests use it directly so the
// numbers in assertions line up with the env defaults.
func DefaultConfig() Config {
	return Config{
		Floor:             10,
		BaseWin:           20,
		BaseLoss:          15,
		DemonMargin:       10,
		StrengthRatioMin:  2,
		StrengthRatioCap:  4,
		StrengthBonusStep: 10,
	}
}

// Outcome is one participant's view of a single reported match.
type Outcome struct {
	IsWinner             bool
	WinnerScore          int
	LoserScore           int
	CombinedWinnerRating float64
	CombinedLoserRating  float64
}
