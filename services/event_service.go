package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/matchday/attendance-system/models"
	"github.com/matchday/attendance-system/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	defaultUpcomingLimit = 50
	maxUpcomingLimit     = 100
)

type EventInput struct {
	Title            string     `json:"title"`
	Description      *string    `json:"description"`
	Location         string     `json:"location"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	MaxParticipants  *int       `json:"max_participants"`
	ParticipationFee int        `json:"participation_fee"`
}

// EventDetailView is everything the event page needs: the live aggregate row,
// the full attendance list, and the viewer's own answer (nil when unanswered).
type EventDetailView struct {
	models.EventDetail
	Attendances  []models.Attendance `json:"attendances"`
	MyAttendance *models.Attendance  `json:"my_attendance,omitempty"`
}

type EventService interface {
	Create(ctx context.Context, identity *models.Identity, input EventInput) (*models.Event, error)
	Update(ctx context.Context, identity *models.Identity, eventID string, input EventInput) (*models.Event, error)
	Delete(ctx context.Context, identity *models.Identity, eventID string) error
	ListUpcoming(ctx context.Context, limit int) ([]models.EventDetail, error)
	GetDetail(ctx context.Context, eventID, viewerID string) (*EventDetailView, error)
}

type eventService struct {
	eventRepo      repositories.EventRepository
	attendanceRepo repositories.AttendanceRepository
	notifier       NotifyService
	logger         *slog.Logger
}

func NewEventService(
	eventRepo repositories.EventRepository,
	attendanceRepo repositories.AttendanceRepository,
	notifier NotifyService,
	logger *slog.Logger,
) EventService {
	return &eventService{
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// Create inserts the event and fires the "event created" push notification
// inline. Notification failure is recorded and logged but never rolls the
// event back.
func (s *eventService) Create(ctx context.Context, identity *models.Identity, input EventInput) (*models.Event, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	if err := validateEventInput(&input); err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:            input.Title,
		Description:      input.Description,
		Location:         input.Location,
		StartTime:        input.StartTime,
		EndTime:          input.EndTime,
		MaxParticipants:  input.MaxParticipants,
		ParticipationFee: input.ParticipationFee,
		CreatedBy:        &identity.UserID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.Send(ctx, event.ID, models.NotificationTypeEventCreated); err != nil {
			s.logger.Warn("event created notification failed",
				slog.String("event_id", event.ID),
				slog.Any("error", err),
			)
		}
	}

	return event, nil
}

func (s *eventService) Update(ctx context.Context, identity *models.Identity, eventID string, input EventInput) (*models.Event, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	if err := validateEventInput(&input); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event for update: %w", err)
	}

	event.Title = input.Title
	event.Description = input.Description
	event.Location = input.Location
	event.StartTime = input.StartTime
	event.EndTime = input.EndTime
	event.MaxParticipants = input.MaxParticipants
	event.ParticipationFee = input.ParticipationFee

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// Delete removes the event and, transactionally with it, every attendance row
// referencing it — no orphans survive a concurrent submission.
func (s *eventService) Delete(ctx context.Context, identity *models.Identity, eventID string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (s *eventService) ListUpcoming(ctx context.Context, limit int) ([]models.EventDetail, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	if limit > maxUpcomingLimit {
		limit = maxUpcomingLimit
	}
	return s.eventRepo.ListUpcoming(ctx, time.Now(), limit)
}

func (s *eventService) GetDetail(ctx context.Context, eventID, viewerID string) (*EventDetailView, error) {
	view := &EventDetailView{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		detail, err := s.eventRepo.GetDetailByID(gCtx, eventID)
		if err != nil {
			if errors.Is(err, repositories.ErrEventNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		view.EventDetail = *detail
		return nil
	})

	g.Go(func() error {
		attendances, err := s.attendanceRepo.ListByEvent(gCtx, eventID)
		if err != nil {
			return err
		}
		view.Attendances = attendances
		return nil
	})

	g.Go(func() error {
		own, err := s.attendanceRepo.GetByEventAndUser(gCtx, eventID, viewerID)
		if err != nil {
			if errors.Is(err, repositories.ErrAttendanceNotFound) {
				return nil // unanswered, not an error
			}
			return err
		}
		view.MyAttendance = own
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

func requireAdmin(identity *models.Identity) error {
	if identity == nil {
		return ErrAuthenticationRequired
	}
	if !identity.IsAdmin {
		return ErrForbiddenOperation
	}
	return nil
}

// validateEventInput checks required fields. End-before-start is deliberately
// not rejected here; the stored timestamps are taken as given.
func validateEventInput(input *EventInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Location = strings.TrimSpace(input.Location)

	if input.Title == "" {
		return ErrEventTitleRequired
	}
	if input.Location == "" {
		return ErrEventLocationRequired
	}
	if input.StartTime.IsZero() || input.EndTime.IsZero() {
		return ErrEventTimeRequired
	}
	if input.ParticipationFee < 0 {
		input.ParticipationFee = 0
	}
	return nil
}
