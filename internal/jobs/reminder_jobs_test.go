package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReminderWindow(t *testing.T) {
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	from, to := reminderWindow(now)

	t.Run("ThreeDayHeadsUp", func(t *testing.T) {
		assert.Equal(t, now.AddDate(0, 0, 3), to)
	})

	t.Run("LongOverdueStaysInWindow", func(t *testing.T) {
		// An installment a year past due must still be picked up.
		assert.True(t, from.Before(now.AddDate(-1, 0, 0)))
	})
}
