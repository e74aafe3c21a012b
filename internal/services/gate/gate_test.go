package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voiceminder/voiceminder/internal/models"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		plan        models.Plan
		trialActive bool
		isOwner     bool
		todayCount  int
		want        Capabilities
	}{
		{
			name: "free plan",
			plan: models.PlanFree,
			want: Capabilities{DailyLimit: 3},
		},
		{
			name:       "monthly below cap",
			plan:       models.PlanMonthly,
			todayCount: 4,
			want:       Capabilities{DailyLimit: 5, AdvancedFields: true},
		},
		{
			name:       "monthly at cap locks advanced fields",
			plan:       models.PlanMonthly,
			todayCount: 5,
			want:       Capabilities{DailyLimit: 5, AdvancedFields: false},
		},
		{
			name: "half yearly gets data tab",
			plan: models.PlanHalfYearly,
			want: Capabilities{DailyLimit: 20, AdvancedFields: true, DataTab: true},
		},
		{
			name: "yearly gets everything",
			plan: models.PlanYearly,
			want: Capabilities{DailyLimit: 35, AdvancedFields: true, SpeedControl: true, DataTab: true, AnalyticsTab: true},
		},
		{
			name: "lifetime unlimited",
			plan: models.PlanLifetime,
			want: Capabilities{DailyLimit: 9999, AdvancedFields: true, SpeedControl: true, DataTab: true, AnalyticsTab: true},
		},
		{
			name:        "trial bypasses free plan",
			plan:        models.PlanFree,
			trialActive: true,
			want:        Capabilities{DailyLimit: 10, AdvancedFields: true, SpeedControl: true, DataTab: true, AnalyticsTab: true},
		},
		{
			name:    "owner bypasses everything",
			plan:    models.PlanFree,
			isOwner: true,
			want:    Capabilities{DailyLimit: 9999, AdvancedFields: true, SpeedControl: true, DataTab: true, AnalyticsTab: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.plan, tt.trialActive, tt.isOwner, tt.todayCount)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanCreate(t *testing.T) {
	caps := Evaluate(models.PlanFree, false, false, 0)

	assert.True(t, caps.CanCreate(0))
	assert.True(t, caps.CanCreate(2))
	assert.False(t, caps.CanCreate(3))
	assert.False(t, caps.CanCreate(10))
}

// возможности не должны расширяться с ростом числа созданных за день
func TestEvaluate_MonotonicInCount(t *testing.T) {
	for _, plan := range []models.Plan{models.PlanFree, models.PlanMonthly, models.PlanHalfYearly, models.PlanYearly, models.PlanLifetime} {
		prev := Evaluate(plan, false, false, 0)
		for count := 1; count <= 40; count++ {
			cur := Evaluate(plan, false, false, count)
			assert.Equal(t, prev.DailyLimit, cur.DailyLimit)
			if prev.AdvancedFields != cur.AdvancedFields {
				assert.False(t, cur.AdvancedFields, "advanced fields must only be revoked, plan %s count %d", plan, count)
			}
			prev = cur
		}
	}
}
