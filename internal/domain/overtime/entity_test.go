package overtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func TestCalculateOTMinutes(t *testing.T) {
	tests := []struct {
		name     string
		worked   int
		standard int
		rule     *OvertimeRule
		want     int
	}{
		{"no rule under standard", 400, 480, nil, 0},
		{"no rule over standard", 600, 480, nil, 120},
		{"remainder below half rounds down", 487, 480, &OvertimeRule{DailyThresholdMinutes: intPtr(480), RoundingIntervalMinutes: intPtr(15)}, 0},
		{"remainder at half rounds up", 488, 480, &OvertimeRule{DailyThresholdMinutes: intPtr(480), RoundingIntervalMinutes: intPtr(15)}, 15},
		{"exact multiple unchanged", 510, 480, &OvertimeRule{DailyThresholdMinutes: intPtr(480), RoundingIntervalMinutes: intPtr(15)}, 30},
		{"even interval half rounds up", 495, 480, &OvertimeRule{DailyThresholdMinutes: intPtr(480), RoundingIntervalMinutes: intPtr(30)}, 30},
		{"daily cap clamps", 580, 480, &OvertimeRule{DailyThresholdMinutes: intPtr(480), MaxOTPerDayMinutes: intPtr(60)}, 60},
		{"rounding before cap", 532, 480, &OvertimeRule{DailyThresholdMinutes: intPtr(480), RoundingIntervalMinutes: intPtr(30), MaxOTPerDayMinutes: intPtr(45)}, 45},
		{"rule without threshold uses standard", 540, 480, &OvertimeRule{}, 60},
		{"rule threshold overrides standard", 540, 480, &OvertimeRule{DailyThresholdMinutes: intPtr(510)}, 30},
		{"never negative", 100, 480, &OvertimeRule{DailyThresholdMinutes: intPtr(480), RoundingIntervalMinutes: intPtr(15)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateOTMinutes(tt.worked, tt.standard, tt.rule))
		})
	}
}
