package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream(t *testing.T) {
	t.Run("drain returns and clears pending notifications", func(t *testing.T) {
		s := NewStream(10)
		s.Success("saved")
		s.Error("boom")
		s.Info("fyi")

		assert.Equal(t, 3, s.Pending())
		notes := s.Drain()
		require.Len(t, notes, 3)
		assert.Equal(t, SeveritySuccess, notes[0].Severity)
		assert.Equal(t, SeverityError, notes[1].Severity)
		assert.Equal(t, SeverityInfo, notes[2].Severity)

		assert.Zero(t, s.Pending())
		assert.Empty(t, s.Drain())
	})

	t.Run("oldest entries are dropped when full", func(t *testing.T) {
		s := NewStream(3)
		for i := 0; i < 5; i++ {
			s.Info(fmt.Sprintf("n%d", i))
		}
		notes := s.Drain()
		require.Len(t, notes, 3)
		assert.Equal(t, "n2", notes[0].Message)
		assert.Equal(t, "n4", notes[2].Message)
	})
}
