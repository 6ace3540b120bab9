package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

func TestDashboardStatsByRole(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	first := f.createComplaint(t)
	f.createComplaint(t)
	f.assignTo(t, first.ID, tech.ID)

	feedbackRepo := &fakeFeedbackRepo{complaints: f.complaints}
	stats := service.NewStatsService(f.complaints, f.users, feedbackRepo, nil, 0, zap.NewNop())

	adminStats, err := stats.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, adminStats.Total)
	assert.Equal(t, 1, adminStats.Pending)
	assert.Equal(t, 1, adminStats.Assigned)
	assert.Equal(t, 1, adminStats.Students)
	assert.Equal(t, 2, adminStats.Technicians)

	studentStats, err := stats.Dashboard(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, 2, studentStats.Total)
	assert.Zero(t, studentStats.Students)

	techStats, err := stats.Dashboard(ctx, tech)
	require.NoError(t, err)
	assert.Equal(t, 1, techStats.Total)
	assert.Equal(t, 1, techStats.Assigned)

	_, err = stats.Dashboard(ctx, nil)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}
