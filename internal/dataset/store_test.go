package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"envchart/pkg/contracts/domain"
)

func TestStore(t *testing.T) {
	oneSample := func(category string) []domain.Sample {
		return []domain.Sample{{
			Category:  category,
			Timestamp: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local),
		}}
	}

	t.Run("starts empty", func(t *testing.T) {
		s := NewStore()
		assert.True(t, s.Empty())
		samples, source, loadedAt := s.Snapshot()
		assert.Empty(t, samples)
		assert.Empty(t, source)
		assert.True(t, loadedAt.IsZero())
	})

	t.Run("install publishes the dataset", func(t *testing.T) {
		s := NewStore()
		token := s.BeginLoad()
		require.True(t, s.Install(token, oneSample("Sala A"), "marco.xlsx"))

		assert.False(t, s.Empty())
		samples, source, loadedAt := s.Snapshot()
		require.Len(t, samples, 1)
		assert.Equal(t, "Sala A", samples[0].Category)
		assert.Equal(t, "marco.xlsx", source)
		assert.False(t, loadedAt.IsZero())
	})

	t.Run("stale load cannot clobber a fresher one", func(t *testing.T) {
		s := NewStore()
		stale := s.BeginLoad()
		fresh := s.BeginLoad()

		require.True(t, s.Install(fresh, oneSample("Sala B"), "abril.xlsx"))
		assert.False(t, s.Install(stale, oneSample("Sala A"), "marco.xlsx"))

		samples, source, _ := s.Snapshot()
		require.Len(t, samples, 1)
		assert.Equal(t, "Sala B", samples[0].Category)
		assert.Equal(t, "abril.xlsx", source)
	})

	t.Run("failed load leaves the dataset untouched", func(t *testing.T) {
		s := NewStore()
		token := s.BeginLoad()
		require.True(t, s.Install(token, oneSample("Sala A"), "marco.xlsx"))

		// A later load that errors out simply never installs.
		_ = s.BeginLoad()

		samples, source, _ := s.Snapshot()
		require.Len(t, samples, 1)
		assert.Equal(t, "marco.xlsx", source)
	})

	t.Run("clear supersedes in-flight loads", func(t *testing.T) {
		s := NewStore()
		token := s.BeginLoad()
		s.Clear()

		assert.False(t, s.Install(token, oneSample("Sala A"), "marco.xlsx"))
		assert.True(t, s.Empty())
	})

	t.Run("clear removes an installed dataset", func(t *testing.T) {
		s := NewStore()
		token := s.BeginLoad()
		require.True(t, s.Install(token, oneSample("Sala A"), "marco.xlsx"))

		s.Clear()
		assert.True(t, s.Empty())
		_, source, loadedAt := s.Snapshot()
		assert.Empty(t, source)
		assert.True(t, loadedAt.IsZero())
	})
}
