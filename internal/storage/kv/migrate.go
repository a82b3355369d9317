package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Action is what the migrator does with data written under an older schema.
type Action int

const (
	ActionNoOp Action = iota
	ActionWipe
	ActionTransform
)

func (a Action) String() string {
	switch a {
	case ActionNoOp:
		return "noop"
	case ActionWipe:
		return "wipe"
	case ActionTransform:
		return "transform"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// TransformFunc rewrites data in place from an older schema to the current one.
type TransformFunc func(ctx context.Context, store Store) error

// Step is a policy entry.
type Step struct {
	Action    Action
	Transform TransformFunc
}

func NoOp() Step {
	return Step{Action: ActionNoOp}
}

func Wipe() Step {
	return Step{Action: ActionWipe}
}

func Transform(fn TransformFunc) Step {
	return Step{Action: ActionTransform, Transform: fn}
}

// Policy maps a stored schema version tag to the step upgrading it. Tags
// missing from the policy, and stores without a marker, are wiped.
type Policy map[string]Step

// Migrator brings the store to the current schema version once per process.
type Migrator struct {
	store   Store
	version string
	policy  Policy
	logger  *zap.Logger

	once    sync.Once
	outcome Action
	err     error
}

func NewMigrator(store Store, version string, policy Policy, logger *zap.Logger) *Migrator {
	return &Migrator{
		store:   store,
		version: version,
		policy:  policy,
		logger:  logger,
	}
}

// Run performs the migration on the first call and returns its outcome.
// Later calls return the first outcome without touching the store.
func (m *Migrator) Run(ctx context.Context) (Action, error) {
	m.once.Do(func() {
		m.outcome, m.err = m.migrate(ctx)
	})
	return m.outcome, m.err
}

func (m *Migrator) migrate(ctx context.Context) (Action, error) {
	stored, err := m.store.Get(ctx, SchemaMarkerKey)
	switch {
	case errors.Is(err, ErrNotFound):
		stored = ""
	case err != nil:
		// An unreadable marker says nothing about the data; never wipe on it.
		return ActionNoOp, fmt.Errorf("read schema marker: %w", err)
	}

	if stored == m.version {
		m.logger.Debug("kv schema up to date", zap.String("version", m.version))
		return ActionNoOp, nil
	}

	step, ok := m.policy[stored]
	if !ok || stored == "" {
		step = Wipe()
	}

	log := m.logger.With(
		zap.String("from", stored),
		zap.String("to", m.version),
		zap.Stringer("action", step.Action),
	)

	switch step.Action {
	case ActionNoOp:
		if err := m.store.Set(ctx, SchemaMarkerKey, m.version); err != nil {
			return ActionNoOp, fmt.Errorf("write schema marker: %w", err)
		}
	case ActionTransform:
		if err := step.Transform(ctx, m.store); err != nil {
			log.Warn("kv transform failed, wiping store", zap.Error(err))
			if err := m.wipe(ctx); err != nil {
				return ActionWipe, err
			}
			return ActionWipe, nil
		}
		if err := m.store.Set(ctx, SchemaMarkerKey, m.version); err != nil {
			return ActionTransform, fmt.Errorf("write schema marker: %w", err)
		}
	default:
		if err := m.wipe(ctx); err != nil {
			return ActionWipe, err
		}
	}

	log.Info("kv schema migrated")
	return step.Action, nil
}

func (m *Migrator) wipe(ctx context.Context) error {
	if r, ok := m.store.(Resetter); ok {
		if err := r.Reset(ctx, SchemaMarkerKey, m.version); err != nil {
			return fmt.Errorf("reset store: %w", err)
		}
		return nil
	}

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	if err := m.store.Set(ctx, SchemaMarkerKey, m.version); err != nil {
		return fmt.Errorf("write schema marker: %w", err)
	}
	return nil
}
