package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matchday/attendance-system/models"
	"github.com/matchday/attendance-system/repositories"
)

type SetStatusInput struct {
	Status  models.AttendanceStatus `json:"status"`
	Comment string                  `json:"comment"`
}

type AttendanceService interface {
	// SetStatus records the caller's attendance for the event. There is at
	// most one row per (event, user): repeated calls overwrite status and
	// comment in place. Any status may follow any other.
	SetStatus(ctx context.Context, identity *models.Identity, eventID string, input SetStatusInput) (*models.Attendance, error)
	// GetOwn returns (nil, nil) when the caller has not answered yet —
	// unanswered is a distinct state from an explicit "undecided" row.
	GetOwn(ctx context.Context, eventID, userID string) (*models.Attendance, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Attendance, error)
	// SetGuestCount overwrites the event's guest headcount. Admin only; the
	// change shows up in total_participants on the next read.
	SetGuestCount(ctx context.Context, identity *models.Identity, eventID string, count int) (*models.EventDetail, error)
}

type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	eventRepo      repositories.EventRepository
}

func NewAttendanceService(
	attendanceRepo repositories.AttendanceRepository,
	eventRepo repositories.EventRepository,
) AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		eventRepo:      eventRepo,
	}
}

func (s *attendanceService) SetStatus(ctx context.Context, identity *models.Identity, eventID string, input SetStatusInput) (*models.Attendance, error) {
	if identity == nil {
		return nil, ErrAuthenticationRequired
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidAttendanceStatus
	}

	attendance := &models.Attendance{
		EventID: eventID,
		UserID:  identity.UserID,
		Status:  input.Status,
	}
	if comment := strings.TrimSpace(input.Comment); comment != "" {
		attendance.Comment = &comment
	}

	if err := s.attendanceRepo.Upsert(ctx, attendance); err != nil {
		if errors.Is(err, repositories.ErrAttendanceEventInvalid) {
			return nil, ErrEventNotFound
		}
		if errors.Is(err, repositories.ErrAttendanceUserInvalid) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}
	return attendance, nil
}

func (s *attendanceService) GetOwn(ctx context.Context, eventID, userID string) (*models.Attendance, error) {
	attendance, err := s.attendanceRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrAttendanceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}
	return attendance, nil
}

func (s *attendanceService) ListByEvent(ctx context.Context, eventID string) ([]models.Attendance, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return s.attendanceRepo.ListByEvent(ctx, eventID)
}

func (s *attendanceService) SetGuestCount(ctx context.Context, identity *models.Identity, eventID string, count int) (*models.EventDetail, error) {
	if identity == nil {
		return nil, ErrAuthenticationRequired
	}
	if !identity.IsAdmin {
		return nil, ErrForbiddenOperation
	}
	if count < 0 {
		return nil, ErrGuestCountNegative
	}

	if err := s.eventRepo.UpdateGuestCount(ctx, eventID, count); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update guest count: %w", err)
	}

	detail, err := s.eventRepo.GetDetailByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload event detail: %w", err)
	}
	return detail, nil
}
