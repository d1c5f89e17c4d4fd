package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/sandevgo/medrag/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendKeepsChronologicalOrder(t *testing.T) {
	s := NewStore(10)

	require.NoError(t, s.Append("s1", core.RoleUser, "What is diabetes?"))
	require.NoError(t, s.Append("s1", core.RoleAssistant, "Diabetes is a chronic disease affecting blood sugar regulation."))

	got := s.GetOrCreate("s1")
	assert.Equal(t, []core.Turn{
		{Role: core.RoleUser, Text: "What is diabetes?"},
		{Role: core.RoleAssistant, Text: "Diabetes is a chronic disease affecting blood sugar regulation."},
	}, got)
}

func TestStore_EvictsOldestWhenFull(t *testing.T) {
	s := NewStore(10)

	for i := 1; i <= 11; i++ {
		require.NoError(t, s.Append("s1", core.RoleUser, fmt.Sprintf("question %d", i)))
	}

	got := s.GetOrCreate("s1")
	require.Len(t, got, 10)
	assert.Equal(t, "question 2", got[0].Text)
	assert.Equal(t, "question 11", got[9].Text)
}

func TestStore_BoundedForAnyAppendSequence(t *testing.T) {
	tests := []struct {
		name    string
		window  int
		appends int
	}{
		{name: "window_one", window: 1, appends: 5},
		{name: "under_capacity", window: 4, appends: 3},
		{name: "exact_capacity", window: 4, appends: 4},
		{name: "wraps_many_times", window: 3, appends: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.window)
			for i := 0; i < tt.appends; i++ {
				require.NoError(t, s.Append("s", core.RoleUser, fmt.Sprint(i)))
				assert.LessOrEqual(t, len(s.GetOrCreate("s")), tt.window)
			}

			got := s.GetOrCreate("s")
			want := tt.appends
			if want > tt.window {
				want = tt.window
			}
			require.Len(t, got, want)
			// strictly the most recent appends, oldest first
			for i, turn := range got {
				assert.Equal(t, fmt.Sprint(tt.appends-want+i), turn.Text)
			}
		})
	}
}

func TestStore_GetOrCreateReturnsCopy(t *testing.T) {
	s := NewStore(3)
	require.NoError(t, s.Append("s", core.RoleUser, "a"))

	got := s.GetOrCreate("s")
	got[0].Text = "mutated"

	assert.Equal(t, "a", s.GetOrCreate("s")[0].Text)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(3)

	assert.NotPanics(t, func() { s.Clear("unknown") })

	require.NoError(t, s.Append("s", core.RoleUser, "a"))
	s.Clear("s")

	assert.Empty(t, s.GetOrCreate("s"))
}

func TestStore_AppendRejectsInvalidInput(t *testing.T) {
	s := NewStore(3)

	assert.Error(t, s.Append("", core.RoleUser, "a"))
	assert.Error(t, s.Append("s", core.RoleSystem, "a"))
	assert.Empty(t, s.GetOrCreate("s"))
}

func TestStore_NonPositiveWindowFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultWindow, NewStore(0).Window())
}

func TestStore_ConcurrentAppendsSameSession(t *testing.T) {
	const (
		window  = 10
		writers = 16
		perG    = 50
	)
	s := NewStore(window)

	var wg sync.WaitGroup
	for g := 0; g < writers; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				_ = s.Append("shared", core.RoleUser, fmt.Sprintf("%d-%d", g, i))
			}
		}(g)
	}
	wg.Wait()

	assert.Len(t, s.GetOrCreate("shared"), window)
}

func TestStore_ConcurrentSessionsAreIndependent(t *testing.T) {
	s := NewStore(5)

	var wg sync.WaitGroup
	for g := 0; g < 20; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", g)
			for i := 0; i < 3; i++ {
				_ = s.Append(id, core.RoleUser, fmt.Sprint(i))
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 20, s.Sessions())
	for g := 0; g < 20; g++ {
		got := s.GetOrCreate(fmt.Sprintf("session-%d", g))
		require.Len(t, got, 3)
		assert.Equal(t, "0", got[0].Text)
		assert.Equal(t, "2", got[2].Text)
	}
}

func TestNewSessionID(t *testing.T) {
	a, err := NewSessionID()
	require.NoError(t, err)
	b, err := NewSessionID()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, "^[0-9a-f]{32}$", a)
}
