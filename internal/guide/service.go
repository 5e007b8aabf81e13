package guide

import (
	"context"
	"log/slog"
)

// Repository defines the data access methods for guide buttons and tables.
type Repository interface {
	ListButtons(ctx context.Context) ([]*Button, error)
	GetButton(ctx context.Context, id int64) (*Button, error)
	CreateButton(ctx context.Context, b *Button) error
	UpdateButton(ctx context.Context, b *Button) error
	DeleteButton(ctx context.Context, id int64) error
	ReorderButtons(ctx context.Context, orderedIDs []int64) error

	GetTable(ctx context.Context, buttonID int64) (*Table, error)
	UpsertTable(ctx context.Context, t *Table) error
}

// Service handles orientador button and table management.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListButtons(ctx context.Context) ([]*Button, error) {
	return s.repo.ListButtons(ctx)
}

func (s *Service) CreateButton(ctx context.Context, dto ButtonDTO) (*Button, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	position := 0
	if dto.Position != nil {
		position = *dto.Position
	} else {
		// Append to the end by default.
		buttons, err := s.repo.ListButtons(ctx)
		if err != nil {
			return nil, err
		}
		for _, b := range buttons {
			if b.Position >= position {
				position = b.Position + 1
			}
		}
	}

	b := &Button{Label: dto.Label, Position: position}
	if err := s.repo.CreateButton(ctx, b); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "guide button created", "button_id", b.ID, "label", b.Label)
	return b, nil
}

func (s *Service) UpdateButton(ctx context.Context, id int64, dto ButtonDTO) (*Button, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	b, err := s.repo.GetButton(ctx, id)
	if err != nil {
		return nil, err
	}

	b.Label = dto.Label
	if dto.Position != nil {
		b.Position = *dto.Position
	}
	if err := s.repo.UpdateButton(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) DeleteButton(ctx context.Context, id int64) error {
	if err := s.repo.DeleteButton(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "guide button deleted", "button_id", id)
	return nil
}

// Reorder rewrites positions to match the given order. IDs missing from the
// list keep their positions.
func (s *Service) Reorder(ctx context.Context, dto ReorderDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	return s.repo.ReorderButtons(ctx, dto.ButtonIDs)
}

// Table returns the document behind a button; an empty document when none
// was saved yet.
func (s *Service) Table(ctx context.Context, buttonID int64) (*Table, error) {
	if _, err := s.repo.GetButton(ctx, buttonID); err != nil {
		return nil, err
	}

	t, err := s.repo.GetTable(ctx, buttonID)
	if err == ErrTableNotFound {
		return &Table{ButtonID: buttonID, Payload: []byte("{}")}, nil
	}
	return t, err
}

func (s *Service) SaveTable(ctx context.Context, buttonID int64, dto TableDTO) (*Table, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetButton(ctx, buttonID); err != nil {
		return nil, err
	}

	t := &Table{ButtonID: buttonID, Payload: dto.Payload}
	if err := s.repo.UpsertTable(ctx, t); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "guide table saved", "button_id", buttonID, "bytes", len(dto.Payload))
	return t, nil
}
