package service

import (
	"context"
	"fmt"
	"time"

	"stallsync/internal/dto"
	"stallsync/internal/model"
	"stallsync/internal/repository"
)

// StaffService manages HR details for staff users plus their activity trail.
type StaffService interface {
	UpsertDetails(ctx context.Context, actor *model.User, staffUID string, req dto.UpsertStaffDetailsRequest) (*dto.StaffDetailsResponse, error)
	GetDetails(ctx context.Context, staffUID string) (*dto.StaffDetailsResponse, error)
	MarkAttendance(ctx context.Context, actor *model.User, staffUID string, req dto.MarkAttendanceRequest) (*dto.StaffActivityResponse, error)
	ListActivity(ctx context.Context, staffUID string, limit int) ([]dto.StaffActivityResponse, error)
}

type staffService struct {
	repo  repository.StaffRepository
	users repository.UserRepository
}

func NewStaffService(repo repository.StaffRepository, users repository.UserRepository) StaffService {
	return &staffService{repo: repo, users: users}
}

func (s *staffService) UpsertDetails(ctx context.Context, actor *model.User, staffUID string, req dto.UpsertStaffDetailsRequest) (*dto.StaffDetailsResponse, error) {
	staff, err := s.users.FindByUID(ctx, staffUID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindDetails(ctx, staffUID)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}

	details := &model.StaffDetails{UID: staffUID}
	if existing != nil {
		details = existing
	}
	details.Phone = req.Phone
	details.Address = req.Address
	details.JoiningDate = req.JoiningDate
	details.Salary = req.Salary
	details.ExitDate = req.ExitDate

	activityType := model.StaffActivityProfileUpdated
	description := fmt.Sprintf("Profile updated for %s", staff.DisplayName)
	if req.ExitDate != "" && (existing == nil || existing.ExitDate == "") {
		activityType = model.StaffActivityExitRecorded
		description = fmt.Sprintf("Exit recorded for %s (%s)", staff.DisplayName, req.ExitDate)
	}

	entry := &model.StaffActivityLog{
		StaffUID:     staffUID,
		SiteID:       staff.DefaultSiteID,
		ActivityType: activityType,
		Description:  description,
		ActorUID:     actor.UID,
		ActorName:    actor.DisplayName,
	}
	if err := s.repo.SaveDetails(ctx, details, entry); err != nil {
		return nil, err
	}
	return staffDetailsToResponse(details, staff.DisplayName), nil
}

func (s *staffService) GetDetails(ctx context.Context, staffUID string) (*dto.StaffDetailsResponse, error) {
	details, err := s.repo.FindDetails(ctx, staffUID)
	if err != nil {
		return nil, err
	}
	name := ""
	if u, err := s.users.FindByUID(ctx, staffUID); err == nil {
		name = u.DisplayName
	}
	return staffDetailsToResponse(details, name), nil
}

// MarkAttendance appends an attendance entry to the staff activity trail.
func (s *staffService) MarkAttendance(ctx context.Context, actor *model.User, staffUID string, req dto.MarkAttendanceRequest) (*dto.StaffActivityResponse, error) {
	staff, err := s.users.FindByUID(ctx, staffUID)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Attendance for %s on %s: %s", staff.DisplayName, req.Date, req.Status)
	if req.Note != "" {
		description += " (" + req.Note + ")"
	}
	entry := &model.StaffActivityLog{
		StaffUID:     staffUID,
		SiteID:       staff.DefaultSiteID,
		ActivityType: model.StaffActivityAttendance,
		Description:  description,
		ActorUID:     actor.UID,
		ActorName:    actor.DisplayName,
	}
	if err := s.repo.AppendActivity(ctx, entry); err != nil {
		return nil, err
	}
	return &dto.StaffActivityResponse{
		ID:           entry.ID,
		StaffUID:     entry.StaffUID,
		ActivityType: entry.ActivityType,
		Description:  entry.Description,
		ActorName:    entry.ActorName,
		Timestamp:    entry.Timestamp.UTC().Format(time.RFC3339),
	}, nil
}

func (s *staffService) ListActivity(ctx context.Context, staffUID string, limit int) ([]dto.StaffActivityResponse, error) {
	logs, err := s.repo.ListActivity(ctx, staffUID, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.StaffActivityResponse, len(logs))
	for i, entry := range logs {
		resp[i] = dto.StaffActivityResponse{
			ID:           entry.ID,
			StaffUID:     entry.StaffUID,
			ActivityType: entry.ActivityType,
			Description:  entry.Description,
			ActorName:    entry.ActorName,
			Timestamp:    entry.Timestamp.UTC().Format(time.RFC3339),
		}
	}
	return resp, nil
}

func staffDetailsToResponse(d *model.StaffDetails, displayName string) *dto.StaffDetailsResponse {
	return &dto.StaffDetailsResponse{
		UID:         d.UID,
		DisplayName: displayName,
		Phone:       d.Phone,
		Address:     d.Address,
		JoiningDate: d.JoiningDate,
		Salary:      d.Salary,
		ExitDate:    d.ExitDate,
	}
}
