package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
)

func newEscalationFixture(t *testing.T) (*lifecycleFixture, *service.EscalationService) {
	t.Helper()
	f := newLifecycleFixture(t)
	sweeper := service.NewEscalationService(f.complaints, f.service, nil, zap.NewNop(),
		func() time.Time { return f.now })
	return f, sweeper
}

func TestSweepEscalatesOverdueComplaints(t *testing.T) {
	f, sweeper := newEscalationFixture(t)
	ctx := context.Background()

	complaint := f.createComplaint(t)
	overdueDeadline := f.now.Add(-time.Hour)
	_, err := f.service.AssignComplaint(ctx, admin, complaint.ID, tech.ID, overdueDeadline)
	require.NoError(t, err)

	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Escalated)
	assert.Zero(t, report.Failed)

	escalated, err := f.complaints.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusEscalated, escalated.Status)
	assert.Equal(t, 1, escalated.EscalationLevel)

	// An ESCALATED complaint still past its deadline escalates again on the
	// next sweep.
	report, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Escalated)

	escalated, err = f.complaints.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusEscalated, escalated.Status)
	assert.Equal(t, 2, escalated.EscalationLevel)
}

func TestSweepIgnoresComplaintsWithinDeadline(t *testing.T) {
	f, sweeper := newEscalationFixture(t)
	ctx := context.Background()

	complaint := f.createComplaint(t)
	f.assignTo(t, complaint.ID, tech.ID)

	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Scanned)

	unchanged, err := f.complaints.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusAssigned, unchanged.Status)
	assert.Zero(t, unchanged.EscalationLevel)
}

func TestSweepIsolatesPerComplaintFailures(t *testing.T) {
	f, sweeper := newEscalationFixture(t)
	ctx := context.Background()

	first := f.createComplaint(t)
	second := f.createComplaint(t)
	overdueDeadline := f.now.Add(-time.Hour)
	_, err := f.service.AssignComplaint(ctx, admin, first.ID, tech.ID, overdueDeadline)
	require.NoError(t, err)
	_, err = f.service.AssignComplaint(ctx, admin, second.ID, tech2.ID, overdueDeadline)
	require.NoError(t, err)

	// The first complaint resolves between the overdue scan and its
	// escalation; only the second one should escalate.
	f.complaints.beforeUpdate = func() {
		stored, getErr := f.complaints.GetByID(ctx, first.ID)
		if getErr == nil && stored.Status == domain.ComplaintStatusAssigned {
			stored.Status = domain.ComplaintStatusClosed
			f.complaints.set(*stored)
		}
		f.complaints.beforeUpdate = nil
	}

	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, report.Escalated+report.Failed, 2)
	assert.Equal(t, 1, report.Failed)
}
