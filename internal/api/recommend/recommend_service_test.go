package recommend

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harborview-labs/concierge/app/observability/metrics"
	"github.com/harborview-labs/concierge/internal/recengine"
	"github.com/harborview-labs/concierge/internal/types"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetPreferences(ctx context.Context) (types.PreferenceTable, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.PreferenceTable), args.Error(1)
}

func (m *MockRepository) GetActivities(ctx context.Context) (types.ActivityTable, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.ActivityTable), args.Error(1)
}

func (m *MockRepository) GetInteractions(ctx context.Context) (types.InteractionTable, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.InteractionTable), args.Error(1)
}

func testTables() (types.PreferenceTable, types.ActivityTable) {
	prefs := types.PreferenceTable{
		Columns: PreferenceColumns,
		Rows: []types.PreferenceRow{
			{GuestID: "G0001", Values: map[string]string{"Dining": "vegan menu", "Wellness": "spa access"}},
			{GuestID: "G0002", Values: map[string]string{"Sports": "tennis courts"}},
		},
	}
	acts := types.ActivityTable{Rows: []types.ActivityRow{
		{GuestID: "G0001", Activity: "yoga", Category: "Wellness", Rating: 4, TimeSpent: 60},
		{GuestID: "G0002", Activity: "yoga", Category: "Wellness", Rating: 5, TimeSpent: 30},
		{GuestID: "G0002", Activity: "spa", Category: "Wellness", Rating: 5, TimeSpent: 90},
		{GuestID: "G0002", Activity: "tennis", Category: "Sports", Rating: 4, TimeSpent: 60},
	}}
	return prefs, acts
}

func newTestService(repo Repository) *ServiceImpl {
	metrics.InitAppMetrics()
	logger := slog.Default()
	engine := recengine.NewEngine(logger, rand.New(rand.NewSource(1)))
	return NewService(repo, engine, logger)
}

func TestGetRecommendation(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		prefs, acts := testTables()
		mockRepo.On("GetPreferences", mock.Anything).Return(prefs, nil).Once()
		mockRepo.On("GetActivities", mock.Anything).Return(acts, nil).Once()
		mockRepo.On("GetInteractions", mock.Anything).Return(types.InteractionTable{}, nil).Once()

		rec, err := service.GetRecommendation(ctx, "G0001")

		require.NoError(t, err)
		assert.Equal(t, "G0001", rec.GuestID)
		assert.False(t, rec.Fallback)
		assert.NotEmpty(t, rec.Items)
		for _, item := range rec.Items {
			assert.NotEqual(t, "yoga", item.Activity)
		}
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownGuestGetsFallback", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		prefs, acts := testTables()
		mockRepo.On("GetPreferences", mock.Anything).Return(prefs, nil).Once()
		mockRepo.On("GetActivities", mock.Anything).Return(acts, nil).Once()
		mockRepo.On("GetInteractions", mock.Anything).Return(types.InteractionTable{}, nil).Once()

		rec, err := service.GetRecommendation(ctx, "G9999")

		require.NoError(t, err)
		assert.True(t, rec.Fallback)
		assert.Contains(t, rec.Message, "View our events and activities")
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmptyActivityTable", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		prefs, _ := testTables()
		mockRepo.On("GetPreferences", mock.Anything).Return(prefs, nil).Once()
		mockRepo.On("GetActivities", mock.Anything).Return(types.ActivityTable{}, nil).Once()
		mockRepo.On("GetInteractions", mock.Anything).Return(types.InteractionTable{}, nil).Once()

		rec, err := service.GetRecommendation(ctx, "G0001")

		require.Error(t, err)
		assert.Nil(t, rec)
		assert.ErrorIs(t, err, types.ErrEmptyActivities)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo)

		expectedError := errors.New("database error")
		mockRepo.On("GetPreferences", mock.Anything).Return(types.PreferenceTable{}, expectedError).Once()

		rec, err := service.GetRecommendation(ctx, "G0001")

		require.Error(t, err)
		assert.Nil(t, rec)
		assert.Contains(t, err.Error(), expectedError.Error())
		mockRepo.AssertExpectations(t)
	})
}
