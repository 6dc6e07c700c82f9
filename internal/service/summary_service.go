package service

import (
	"context"
	"fmt"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
)

// SummaryService manages professors' write-ups of completed rooms.
type SummaryService struct {
	summaries SummaryStore
	rooms     RoomStore
	users     UserStore
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(summaries SummaryStore, rooms RoomStore, users UserStore) *SummaryService {
	return &SummaryService{summaries: summaries, rooms: rooms, users: users}
}

// CreateOrUpdate writes the summary of a room. Only the room's professor may write it.
func (s *SummaryService) CreateOrUpdate(ctx context.Context, professorUserID uuid.UUID, req *model.UpsertSummaryRequest) (*model.SessionSummary, error) {
	prof, err := s.users.GetProfessorByUserID(ctx, professorUserID)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}
	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, lookupErr(err, "room")
	}
	if room.ProfessorID == nil || *room.ProfessorID != prof.ID {
		return nil, ErrNotAssignedProfessor
	}

	sum := &model.SessionSummary{
		ID:              uuid.New(),
		RoomID:          room.ID,
		RoomName:        room.Name,
		ProfessorID:     prof.ID,
		Status:          model.SummaryStatusPublished,
		Summary:         req.Summary,
		KeyTopics:       req.KeyTopics,
		Strengths:       req.Strengths,
		AreasToImprove:  req.AreasToImprove,
		Recommendations: req.Recommendations,
		OverallScore:    req.OverallScore,
	}
	if err := s.summaries.Upsert(ctx, sum); err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}
	return sum, nil
}

// GetByRoom returns the summary of one room.
func (s *SummaryService) GetByRoom(ctx context.Context, roomID uuid.UUID) (*model.SessionSummary, error) {
	sum, err := s.summaries.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, lookupErr(err, "summary")
	}
	return sum, nil
}

// ByProfessor lists the calling professor's summaries, drafts included.
func (s *SummaryService) ByProfessor(ctx context.Context, professorUserID uuid.UUID) ([]model.SessionSummary, error) {
	prof, err := s.users.GetProfessorByUserID(ctx, professorUserID)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}
	list, err := s.summaries.ListByProfessor(ctx, prof.ID)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return list, nil
}

// ForStudent lists published summaries of rooms the calling student was invited to.
func (s *SummaryService) ForStudent(ctx context.Context, studentUserID uuid.UUID) ([]model.SessionSummary, error) {
	student, err := s.users.GetStudentByUserID(ctx, studentUserID)
	if err != nil {
		return nil, lookupErr(err, "student")
	}
	list, err := s.summaries.ListForStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return list, nil
}
