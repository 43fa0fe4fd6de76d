package services

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchday/attendance-system/models"
	"github.com/matchday/attendance-system/repositories"
)

type fakeEventRepo struct {
	events      map[string]*models.Event
	attendances *fakeAttendanceRepo
	lastLimit   int
	nextID      int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:      map[string]*models.Event{},
		attendances: newFakeAttendanceRepo(),
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	f.nextID++
	event.ID = fmt.Sprintf("event-%d", f.nextID)
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventRepo) GetDetailByID(ctx context.Context, id string) (*models.EventDetail, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	detail := &models.EventDetail{Event: *event}
	for _, a := range f.attendances.rows {
		if a.EventID != id {
			continue
		}
		switch a.Status {
		case models.AttendanceAttending:
			detail.AttendingCount++
		case models.AttendanceNotAttending:
			detail.NotAttendingCount++
		case models.AttendanceUndecided:
			detail.UndecidedCount++
		}
	}
	detail.TotalParticipants = detail.AttendingCount + event.GuestCount
	detail.RecalculateIsFull()
	return detail, nil
}

func (f *fakeEventRepo) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]models.EventDetail, error) {
	f.lastLimit = limit
	var out []models.EventDetail
	for _, event := range f.events {
		if event.StartTime.Before(from) {
			continue
		}
		detail, _ := f.GetDetailByID(ctx, event.ID)
		out = append(out, *detail)
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *models.Event) error {
	if _, ok := f.events[event.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	event.UpdatedAt = time.Now()
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) UpdateGuestCount(ctx context.Context, id string, count int) error {
	event, ok := f.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	event.GuestCount = count
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(f.events, id)
	kept := f.attendances.rows[:0]
	for _, a := range f.attendances.rows {
		if a.EventID != id {
			kept = append(kept, a)
		}
	}
	f.attendances.rows = kept
	return nil
}

type recordingNotifier struct {
	calls []string
	err   error
}

func (n *recordingNotifier) Send(ctx context.Context, eventID, notificationType string) error {
	n.calls = append(n.calls, eventID+"/"+notificationType)
	return n.err
}

func adminIdentity() *models.Identity {
	return &models.Identity{UserID: "admin-1", DisplayName: "Coach", IsAdmin: true}
}

func memberIdentity() *models.Identity {
	return &models.Identity{UserID: "member-1", DisplayName: "Alice"}
}

func validEventInput() EventInput {
	start := time.Now().Add(24 * time.Hour)
	return EventInput{
		Title:     "Practice match",
		Location:  "Riverside pitch",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	}
}

func newEventService(repo *fakeEventRepo, notifier NotifyService) EventService {
	return NewEventService(repo, repo.attendances, notifier, slog.Default())
}

func TestEventCreateRequiresAdmin(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newEventService(repo, nil)

	_, err := svc.Create(context.Background(), memberIdentity(), validEventInput())
	assert.ErrorIs(t, err, ErrForbiddenOperation)
	assert.Empty(t, repo.events)

	_, err = svc.Create(context.Background(), nil, validEventInput())
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestEventCreateValidation(t *testing.T) {
	svc := newEventService(newFakeEventRepo(), nil)

	input := validEventInput()
	input.Title = "   "
	_, err := svc.Create(context.Background(), adminIdentity(), input)
	assert.ErrorIs(t, err, ErrEventTitleRequired)

	input = validEventInput()
	input.Location = ""
	_, err = svc.Create(context.Background(), adminIdentity(), input)
	assert.ErrorIs(t, err, ErrEventLocationRequired)

	input = validEventInput()
	input.StartTime = time.Time{}
	_, err = svc.Create(context.Background(), adminIdentity(), input)
	assert.ErrorIs(t, err, ErrEventTimeRequired)
}

func TestEventCreateFiresNotification(t *testing.T) {
	repo := newFakeEventRepo()
	notifier := &recordingNotifier{}
	svc := newEventService(repo, notifier)

	event, err := svc.Create(context.Background(), adminIdentity(), validEventInput())
	require.NoError(t, err)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, event.ID+"/"+models.NotificationTypeEventCreated, notifier.calls[0])
}

func TestEventCreateSurvivesNotificationFailure(t *testing.T) {
	repo := newFakeEventRepo()
	notifier := &recordingNotifier{err: ErrNotificationFailed}
	svc := newEventService(repo, notifier)

	event, err := svc.Create(context.Background(), adminIdentity(), validEventInput())
	require.NoError(t, err)
	assert.Contains(t, repo.events, event.ID)
}

func TestEventDeleteRemovesAttendances(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newEventService(repo, nil)

	event, err := svc.Create(context.Background(), adminIdentity(), validEventInput())
	require.NoError(t, err)

	require.NoError(t, repo.attendances.Upsert(context.Background(), &models.Attendance{
		EventID: event.ID,
		UserID:  "member-1",
		Status:  models.AttendanceAttending,
	}))

	require.NoError(t, svc.Delete(context.Background(), adminIdentity(), event.ID))
	assert.Empty(t, repo.events)
	assert.Empty(t, repo.attendances.rows)

	assert.ErrorIs(t, svc.Delete(context.Background(), adminIdentity(), event.ID), ErrEventNotFound)
}

func TestEventListUpcomingClampsLimit(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newEventService(repo, nil)

	_, err := svc.ListUpcoming(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, defaultUpcomingLimit, repo.lastLimit)

	_, err = svc.ListUpcoming(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, maxUpcomingLimit, repo.lastLimit)

	_, err = svc.ListUpcoming(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastLimit)
}

func TestEventGetDetail(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newEventService(repo, nil)

	max := 2
	input := validEventInput()
	input.MaxParticipants = &max
	event, err := svc.Create(context.Background(), adminIdentity(), input)
	require.NoError(t, err)

	for _, row := range []models.Attendance{
		{EventID: event.ID, UserID: "member-1", Status: models.AttendanceAttending},
		{EventID: event.ID, UserID: "member-2", Status: models.AttendanceAttending},
		{EventID: event.ID, UserID: "member-3", Status: models.AttendanceNotAttending},
	} {
		row := row
		require.NoError(t, repo.attendances.Upsert(context.Background(), &row))
	}

	view, err := svc.GetDetail(context.Background(), event.ID, "member-1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.AttendingCount)
	assert.Equal(t, 1, view.NotAttendingCount)
	assert.Equal(t, 2, view.TotalParticipants)
	assert.True(t, view.IsFull)
	assert.Len(t, view.Attendances, 3)
	require.NotNil(t, view.MyAttendance)
	assert.Equal(t, models.AttendanceAttending, view.MyAttendance.Status)

	// A viewer who has not answered gets no own-attendance row.
	view, err = svc.GetDetail(context.Background(), event.ID, "member-99")
	require.NoError(t, err)
	assert.Nil(t, view.MyAttendance)

	_, err = svc.GetDetail(context.Background(), "missing", "member-1")
	assert.ErrorIs(t, err, ErrEventNotFound)
}
