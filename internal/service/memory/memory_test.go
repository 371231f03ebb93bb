package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/store/inmem"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

func TestService_CapsAtTwenty(t *testing.T) {
	s := New(inmem.NewMemoryStore(), 0)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		require.NoError(t, s.AddInteraction(ctx, "u", fmt.Sprint("q", i), fmt.Sprint("a", i)))
	}
	summary, err := s.Summary(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "Recent conversation with 20 messages", summary)

	recent, err := s.Recent(ctx, "u", 0)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, "a14", recent[9].Content)
	assert.Equal(t, RoleAssistant, recent[9].Role)
}

func TestService_EmptyUser(t *testing.T) {
	s := New(inmem.NewMemoryStore(), 20)
	ctx := context.Background()
	summary, err := s.Summary(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, "", summary)

	pc, err := s.PromptContext(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, "", pc)

	v, err := s.Describe(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, v.RecentHistory)
	assert.NotNil(t, v.RecentHistory)
	assert.Equal(t, map[string]any{}, v.Context)
}

func TestService_PromptContext(t *testing.T) {
	s := New(inmem.NewMemoryStore(), 20)
	ctx := context.Background()
	require.NoError(t, s.AddMessage(ctx, "u", RoleUser, "hello"))
	require.NoError(t, s.SetPreference(ctx, "u", "tone", "casual"))

	pc, err := s.PromptContext(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "Previous conversation summary: Recent conversation with 1 messages\nUser preferences: {\"tone\":\"casual\"}", pc)

	v, err := s.Describe(ctx, "u")
	require.NoError(t, err)
	require.Len(t, v.RecentHistory, 1)
	assert.Equal(t, "hello", v.RecentHistory[0].Content)
	assert.Equal(t, "casual", v.Context["tone"])
}

type mockStore struct{ mock.Mock }

func (m *mockStore) Append(ctx context.Context, userID string, limit int, msgs ...domain.Message) error {
	return m.Called(ctx, userID, limit, msgs).Error(0)
}

func (m *mockStore) Recent(ctx context.Context, userID string, n int) ([]domain.Message, error) {
	args := m.Called(ctx, userID, n)
	msgs, _ := args.Get(0).([]domain.Message)
	return msgs, args.Error(1)
}

func (m *mockStore) SetPreference(ctx context.Context, userID, key string, value any) error {
	return m.Called(ctx, userID, key, value).Error(0)
}

func (m *mockStore) Preferences(ctx context.Context, userID string) (map[string]any, error) {
	args := m.Called(ctx, userID)
	prefs, _ := args.Get(0).(map[string]any)
	return prefs, args.Error(1)
}

func TestService_StoreErrorsAreWrapped(t *testing.T) {
	st := &mockStore{}
	boom := errors.New("redis down")
	st.On("Append", mock.Anything, "u", 20, mock.Anything).Return(boom)
	st.On("Recent", mock.Anything, "u", mock.Anything).Return(nil, boom)
	st.On("Preferences", mock.Anything, "u").Return(nil, nil)

	s := New(st, 20)
	ctx := context.Background()
	err := s.AddInteraction(ctx, "u", "a", "b")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "op=memory.AddInteraction")

	_, err = s.Describe(ctx, "u")
	require.ErrorIs(t, err, boom)

	prefs, err := s.Preferences(ctx, "u")
	require.NoError(t, err)
	assert.NotNil(t, prefs)
	st.AssertExpectations(t)
}
