package lossrate

import (
	"context"

	"fueldesk/internal/core/apperror"
	corecontext "fueldesk/internal/core/context"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/tx"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/audit"
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/domain/catalogs/store"
	"fueldesk/pkg/logger"
)

// ReferenceChecker reports whether closed periods reference a config. The
// closing repository implements it; the indirection keeps this package from
// depending on the closing engine.
type ReferenceChecker interface {
	ConfigReferenced(ctx context.Context, configID id.ID) (bool, error)
}

// Service provides business logic for loss rate configurations.
type Service struct {
	repo      Repository
	stores    store.Repository
	refs      ReferenceChecker
	audit     audit.Recorder
	txManager tx.Manager
}

// NewService creates a new loss rate service.
func NewService(repo Repository, stores store.Repository, refs ReferenceChecker, auditor audit.Recorder, txManager tx.Manager) *Service {
	if txManager == nil {
		panic("lossrate: txManager is required")
	}
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		stores:    stores,
		refs:      refs,
		audit:     auditor,
		txManager: txManager,
	}
}

// Create opens a new rate window for (store, category). When an open window
// already exists it is closed at effectiveFrom minus one day inside the same
// transaction, so the timeline never overlaps. A window with effectiveTo set
// is accepted as well; the days after its end stay uncovered (rate zero)
// until a successor opens.
func (s *Service) Create(ctx context.Context, c *Config) (*Config, error) {
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	if ok, err := s.stores.Exists(ctx, c.StoreID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperror.NewNotFound("store", c.StoreID.String())
	}

	if id.IsNil(c.ID) {
		c.ID = id.New()
	}
	actor := corecontext.GetActor(ctx)
	c.CreatedBy = actor
	c.UpdatedBy = actor

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		open, err := s.repo.FindOpenForUpdate(ctx, c.StoreID, c.Category)
		if err != nil {
			return err
		}

		if open != nil {
			if !c.EffectiveFrom.After(open.EffectiveFrom) {
				return apperror.NewValidation("effectiveFrom must be after the start of the current open window").
					WithDetail("openFrom", open.EffectiveFrom.String()).
					WithDetail("requestedFrom", c.EffectiveFrom.String())
			}
			end := c.EffectiveFrom.PrevDay()
			open.EffectiveTo = &end
			open.UpdatedBy = actor
			if err := s.repo.Update(ctx, open); err != nil {
				return err
			}
		} else {
			latest, err := s.repo.LatestEnd(ctx, c.StoreID, c.Category)
			if err != nil {
				return err
			}
			if latest != nil && !c.EffectiveFrom.After(*latest) {
				return apperror.NewConflict("rate window overlaps a closed window").
					WithDetail("closedUntil", latest.String()).
					WithDetail("requestedFrom", c.EffectiveFrom.String())
			}
		}

		return s.repo.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, audit.NewEntry(actor, audit.ActionConfigCreated,
		"loss_rate_config", c.ID.String(), c)); err != nil {
		logger.Warn(ctx, "audit record failed", "action", audit.ActionConfigCreated, "error", err)
	}

	logger.Info(ctx, "loss rate window opened",
		"config_id", c.ID,
		"store_id", c.StoreID,
		"category", c.Category,
		"rate", c.Rate,
		"effective_from", c.EffectiveFrom)

	return c, nil
}

// GetByID retrieves a config by ID.
func (s *Service) GetByID(ctx context.Context, configID id.ID) (*Config, error) {
	c, err := s.repo.GetByID(ctx, configID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperror.NewNotFound("loss rate config", configID.String())
	}
	return c, nil
}

// List retrieves configs with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Config, error) {
	return s.repo.List(ctx, filter)
}

// Update patches the rate, the window bounds or the notes of a config.
// Store and category never change. Refused once any closed period references
// the config, because closed figures never recompute. Keeping the patched
// window consistent with its neighbours is the operator's responsibility.
func (s *Service) Update(ctx context.Context, configID id.ID, patch UpdatePatch) (*Config, error) {
	if patch.Rate != nil && !types.ValidLossRate(*patch.Rate) {
		return nil, apperror.NewValidation("rate must be between 0 and 0.10").
			WithDetail("field", "rate").
			WithDetail("value", patch.Rate.String())
	}

	var updated *Config
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetByID(ctx, configID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperror.NewNotFound("loss rate config", configID.String())
		}

		referenced, err := s.refs.ConfigReferenced(ctx, configID)
		if err != nil {
			return err
		}
		if referenced {
			return apperror.NewConfigInUse(configID)
		}

		if patch.Rate != nil {
			c.Rate = *patch.Rate
		}
		if patch.EffectiveFrom != nil {
			c.EffectiveFrom = *patch.EffectiveFrom
		}
		if patch.EffectiveTo != nil {
			c.EffectiveTo = patch.EffectiveTo
		}
		if patch.Notes != nil {
			c.Notes = patch.Notes
		}
		if err := c.Validate(ctx); err != nil {
			return err
		}

		c.UpdatedBy = corecontext.GetActor(ctx)
		if err := s.repo.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, audit.NewEntry(corecontext.GetActor(ctx), audit.ActionConfigUpdated,
		"loss_rate_config", configID.String(), updated)); err != nil {
		logger.Warn(ctx, "audit record failed", "action", audit.ActionConfigUpdated, "error", err)
	}

	logger.Info(ctx, "loss rate config updated", "config_id", configID, "rate", updated.Rate)
	return updated, nil
}

// Delete removes a window. Refused once any closed period references it.
func (s *Service) Delete(ctx context.Context, configID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetByID(ctx, configID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperror.NewNotFound("loss rate config", configID.String())
		}

		referenced, err := s.refs.ConfigReferenced(ctx, configID)
		if err != nil {
			return err
		}
		if referenced {
			return apperror.NewConfigInUse(configID)
		}

		return s.repo.Delete(ctx, configID)
	})
	if err != nil {
		return err
	}

	if err := s.audit.Record(ctx, audit.NewEntry(corecontext.GetActor(ctx), audit.ActionConfigDeleted,
		"loss_rate_config", configID.String(), nil)); err != nil {
		logger.Warn(ctx, "audit record failed", "action", audit.ActionConfigDeleted, "error", err)
	}

	logger.Info(ctx, "loss rate config deleted", "config_id", configID)
	return nil
}

// ResolveEffective returns the rate in force for (store, category) on the
// given day. When no window covers the day the rate is zero and Config is
// nil; accrual then simply books no loss.
func (s *Service) ResolveEffective(ctx context.Context, storeID id.ID, category product.Category, asOf types.Date) (Resolution, error) {
	if !category.Valid() {
		return Resolution{}, apperror.NewValidation("unknown product category").
			WithDetail("value", string(category))
	}
	if asOf.IsZero() {
		return Resolution{}, apperror.NewValidation("asOf date is required")
	}

	c, err := s.repo.ResolveAt(ctx, storeID, category, asOf)
	if err != nil {
		return Resolution{}, err
	}
	if c == nil {
		return Resolution{Rate: types.Rate{}}, nil
	}
	return Resolution{Config: c, Rate: c.Rate}, nil
}
