package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(turns []Turn) []string {
	out := make([]string, len(turns))
	for i, t := range turns {
		out[i] = t.Text
	}
	return out
}

func TestStore_EvictsOldestFirst(t *testing.T) {
	s := New(2)
	s.Append(NewTurn(RoleUser, "A"))
	s.Append(NewTurn(RoleAssistant, "B"))
	s.Append(NewTurn(RoleUser, "C"))

	assert.Equal(t, []string{"B", "C"}, texts(s.Turns()))
	assert.Equal(t, 2, s.Len())
}

func TestStore_BoundHoldsAfterEveryAppend(t *testing.T) {
	tests := []struct {
		limit   int
		appends int
	}{
		{1, 5},
		{3, 2},
		{3, 3},
		{5, 17},
		{50, 120},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit=%d/appends=%d", tt.limit, tt.appends), func(t *testing.T) {
			s := New(tt.limit)
			var all []string
			for i := 0; i < tt.appends; i++ {
				text := fmt.Sprintf("turn-%d", i)
				all = append(all, text)
				s.Append(NewTurn(RoleUser, text))

				require.LessOrEqual(t, s.Len(), s.Limit())
				start := max(len(all)-tt.limit, 0)
				require.Equal(t, all[start:], texts(s.Turns()))
			}
		})
	}
}

func TestStore_Clear(t *testing.T) {
	s := New(3)
	s.Clear()
	assert.Empty(t, s.Turns(), "clear on empty store is a no-op")

	s.Append(NewTurn(RoleUser, "hello"))
	s.Append(NewTurn(RoleAssistant, "hi"))
	s.Clear()
	assert.Empty(t, s.Turns())
	assert.Equal(t, 0, s.Len())

	s.Clear()
	assert.Empty(t, s.Turns())

	// Still usable after clearing
	s.Append(NewTurn(RoleUser, "again"))
	assert.Equal(t, []string{"again"}, texts(s.Turns()))
}

func TestStore_TurnsIsSnapshot(t *testing.T) {
	s := New(3)
	s.Append(NewTurn(RoleUser, "original"))

	snap := s.Turns()
	snap[0].Text = "mutated"

	assert.Equal(t, "original", s.Turns()[0].Text)
}

func TestStore_Last(t *testing.T) {
	s := New(5)
	for _, text := range []string{"a", "b", "c"} {
		s.Append(NewTurn(RoleUser, text))
	}

	tests := []struct {
		n    int
		want []string
	}{
		{0, nil},
		{-1, nil},
		{2, []string{"b", "c"}},
		{3, []string{"a", "b", "c"}},
		{10, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			got := s.Last(tt.n)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, texts(got))
		})
	}
}

func TestNew_MinimumLimit(t *testing.T) {
	s := New(0)
	assert.Equal(t, 1, s.Limit())

	s.Append(NewTurn(RoleUser, "x"))
	s.Append(NewTurn(RoleUser, "y"))
	assert.Equal(t, []string{"y"}, texts(s.Turns()))
}

func TestNewTurn(t *testing.T) {
	turn := NewTurn(RoleAssistant, "reply")
	assert.Equal(t, RoleAssistant, turn.Role)
	assert.Equal(t, "reply", turn.Text)
	assert.False(t, turn.Timestamp.IsZero())
}
