package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/twirl/internal/capture"
	"github.com/verte-zerg/twirl/internal/model"
)

// CreateRotation stores a new, empty rotation.
func (s *Store) CreateRotation(ctx context.Context, name, job string) (model.Rotation, error) {
	name, err := model.ValidateRotationName(name)
	if err != nil {
		return model.Rotation{}, err
	}
	if job != "" {
		j, ok := model.JobByID(job)
		if !ok {
			return model.Rotation{}, fmt.Errorf("unknown job %q", job)
		}
		job = j.ID
	}
	if _, err := s.rotationID(ctx, s.db, name); err == nil {
		return model.Rotation{}, fmt.Errorf("rotation %q: %w", name, ErrExists)
	} else if !errors.Is(err, ErrNotFound) {
		return model.Rotation{}, err
	}

	slug := model.Slug(name)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rotations (name, slug, job, created_at) VALUES (?, ?, ?, ?)`,
		name, slug, job, time.Now().Format(time.RFC3339Nano))
	if err != nil {
		return model.Rotation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Rotation{}, err
	}
	return model.Rotation{ID: id, Name: name, Slug: slug, Job: job}, nil
}

// GetRotation loads a rotation and its steps by name or slug.
func (s *Store) GetRotation(ctx context.Context, name string) (model.Rotation, error) {
	var r model.Rotation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, job FROM rotations WHERE name = ? OR slug = ? ORDER BY name = ? DESC LIMIT 1`,
		name, name, name).Scan(&r.ID, &r.Name, &r.Slug, &r.Job)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Rotation{}, fmt.Errorf("rotation %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return model.Rotation{}, err
	}
	steps, err := s.listSteps(ctx, r.ID)
	if err != nil {
		return model.Rotation{}, err
	}
	r.Steps = steps
	return r, nil
}

// ListRotations returns every rotation with its steps, ordered by name.
func (s *Store) ListRotations(ctx context.Context) ([]model.Rotation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, job FROM rotations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	var rotations []model.Rotation
	for rows.Next() {
		var r model.Rotation
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug, &r.Job); err != nil {
			_ = rows.Close()
			return nil, err
		}
		rotations = append(rotations, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}

	for i := range rotations {
		steps, err := s.listSteps(ctx, rotations[i].ID)
		if err != nil {
			return nil, err
		}
		rotations[i].Steps = steps
	}
	return rotations, nil
}

// DeleteRotation removes a rotation and its steps. Recorded sessions are kept.
func (s *Store) DeleteRotation(ctx context.Context, name string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	id, err := s.rotationID(ctx, tx, name)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM steps WHERE rotation_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM rotations WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// AddStep appends a step to a rotation.
func (s *Store) AddStep(ctx context.Context, rotation string, step model.Step) (model.Step, error) {
	id, err := s.rotationID(ctx, s.db, rotation)
	if err != nil {
		return model.Step{}, err
	}
	stepID, err := insertStep(ctx, s.db, id, step)
	if err != nil {
		return model.Step{}, err
	}
	step.ID = stepID
	return step, nil
}

// ReplaceSteps swaps the whole step list of a rotation in one transaction.
func (s *Store) ReplaceSteps(ctx context.Context, rotation string, steps []model.Step) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	id, err := s.rotationID(ctx, tx, rotation)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM steps WHERE rotation_id = ?`, id); err != nil {
		return err
	}
	for _, step := range steps {
		if _, err = insertStep(ctx, tx, id, step); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetStepKey binds or, with a nil key, unbinds the named step of a rotation.
func (s *Store) SetStepKey(ctx context.Context, rotation, step string, key *capture.Input) error {
	id, err := s.rotationID(ctx, s.db, rotation)
	if err != nil {
		return err
	}
	cols := keyColumns(key)
	res, err := s.db.ExecContext(ctx,
		`UPDATE steps SET key_shift = ?, key_ctrl = ?, key_alt = ?, key_code = ?, key_name = ?,
			mouse_button = ?, pad_button = ?, pad_trigger = ?, has_key = ?
		 WHERE rotation_id = ? AND name = ?`,
		append(cols, id, step)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("step %q in rotation %q: %w", step, rotation, ErrNotFound)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) rotationID(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM rotations WHERE name = ? OR slug = ? ORDER BY name = ? DESC LIMIT 1`, name, name, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("rotation %q: %w", name, ErrNotFound)
	}
	return id, err
}

func insertStep(ctx context.Context, q querier, rotationID int64, step model.Step) (int64, error) {
	var position int
	if err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM steps WHERE rotation_id = ?`, rotationID).Scan(&position); err != nil {
		return 0, err
	}
	args := []any{rotationID, position, step.Name, step.Icon, step.Duration}
	args = append(args, keyColumns(step.Key)...)
	res, err := q.ExecContext(ctx,
		`INSERT INTO steps (rotation_id, position, name, icon, duration,
			key_shift, key_ctrl, key_alt, key_code, key_name, mouse_button, pad_button, pad_trigger, has_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) listSteps(ctx context.Context, rotationID int64) ([]model.Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, icon, duration, key_shift, key_ctrl, key_alt, key_code, key_name,
			mouse_button, pad_button, pad_trigger, has_key
		 FROM steps WHERE rotation_id = ? ORDER BY position`, rotationID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var steps []model.Step
	for rows.Next() {
		var (
			step                         model.Step
			shift, ctrl, alt, hasKey     bool
			code, name                   sql.NullString
			mouse, padButton, padTrigger sql.NullInt64
		)
		if err := rows.Scan(&step.ID, &step.Name, &step.Icon, &step.Duration, &shift, &ctrl, &alt,
			&code, &name, &mouse, &padButton, &padTrigger, &hasKey); err != nil {
			return nil, err
		}
		if hasKey {
			step.Key = &capture.Input{
				Shift:          shift,
				Ctrl:           ctrl,
				Alt:            alt,
				KeyCode:        code.String,
				KeyName:        name.String,
				MouseButton:    nullIdx(mouse),
				GamepadButton:  nullIdx(padButton),
				GamepadTrigger: nullIdx(padTrigger),
			}
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

// keyColumns flattens a keybind into the steps key columns, in table order.
func keyColumns(key *capture.Input) []any {
	if key == nil {
		return []any{false, false, false, nil, nil, nil, nil, nil, false}
	}
	return []any{
		key.Shift, key.Ctrl, key.Alt,
		nullString(key.KeyCode), nullString(key.KeyName),
		idxValue(key.MouseButton), idxValue(key.GamepadButton), idxValue(key.GamepadTrigger),
		true,
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func idxValue(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func nullIdx(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return capture.Idx(int(v.Int64))
}
