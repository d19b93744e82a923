package materials

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Store реализуют Repo и хранилище в памяти.
type Store interface {
	Create(ctx context.Context, m Material) (*Material, error)
	GetByID(ctx context.Context, ownerID, id int64) (*Material, error)
	List(ctx context.Context, ownerID int64) ([]Material, error)
	Update(ctx context.Context, m Material) (*Material, error)
	// Archive обязан вернуть ErrInStock, если остаток больше нуля.
	Archive(ctx context.Context, ownerID, id int64) error
}

type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

func (s *Service) Create(ctx context.Context, ownerID int64, in Input) (*Material, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	m, err := s.store.Create(ctx, Material{
		OwnerID:     ownerID,
		Name:        in.Name,
		Description: in.Description,
		Unit:        in.Unit,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("material created", "owner_id", ownerID, "material_id", m.ID)
	return m, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id int64) (*Material, error) {
	return s.store.GetByID(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID int64) ([]Material, error) {
	return s.store.List(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, ownerID, id int64, in Input) (*Material, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	return s.store.Update(ctx, Material{
		ID:          id,
		OwnerID:     ownerID,
		Name:        in.Name,
		Description: in.Description,
		Unit:        in.Unit,
	})
}

// Delete убирает материал из справочника. Материал с остатком не удаляется;
// история движений удалённого материала сохраняется.
func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.store.Archive(ctx, ownerID, id); err != nil {
		return err
	}
	s.log.Info("material deleted", "owner_id", ownerID, "material_id", id)
	return nil
}

func normalize(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			in.Description = nil
		} else {
			in.Description = &d
		}
	}
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Unit == "" {
		return in, fmt.Errorf("%w: unit is required", ErrInvalidInput)
	}
	return in, nil
}
