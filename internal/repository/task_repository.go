package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/taskpulse/internal/domain"
)

// TaskFilter captures task listing parameters. ParticipantID restricts the
// result to tasks where that user is assignee or creator.
type TaskFilter struct {
	ProjectID     *string
	AssignedTo    *string
	Status        *domain.TaskStatus
	ParticipantID *string
	Limit         int
	Offset        int
}

// TaskRepository encapsulates task persistence.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListWithFilter(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error
	ListByIDs(ctx context.Context, ids []string) ([]domain.Task, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskSelect = `
        SELECT t.id, t.title, t.description, t.priority, t.status, t.due_date,
               t.assigned_to, t.project_id, t.attachments, t.created_by, t.created_at, t.updated_at,
               COALESCE(ARRAY_AGG(td.depends_on::text) FILTER (WHERE td.depends_on IS NOT NULL), '{}')
        FROM tasks t
        LEFT JOIN task_dependencies td ON td.task_id = t.id`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tasks (title, description, priority, status, due_date, assigned_to, project_id, attachments, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.DueDate,
		task.AssignedTo,
		task.ProjectID,
		task.Attachments,
		task.CreatedBy,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return mapConstraintError(err)
	}

	for _, depID := range task.DependencyIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO task_dependencies (task_id, depends_on) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			task.ID, depID); err != nil {
			return mapConstraintError(err)
		}
	}
	return tx.Commit(ctx)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE tasks SET title=$1, description=$2, priority=$3, status=$4, due_date=$5,
            assigned_to=$6, project_id=$7, attachments=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := tx.Exec(ctx, query,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.DueDate,
		task.AssignedTo,
		task.ProjectID,
		task.Attachments,
		task.ID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM task_dependencies WHERE task_id=$1`, task.ID); err != nil {
		return err
	}
	for _, depID := range task.DependencyIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO task_dependencies (task_id, depends_on) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			task.ID, depID); err != nil {
			return mapConstraintError(err)
		}
	}
	return tx.Commit(ctx)
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tasks SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := taskSelect + ` WHERE t.id=$1 GROUP BY t.id`
	var task domain.Task
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&task.DueDate,
		&task.AssignedTo,
		&task.ProjectID,
		&task.Attachments,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.DependencyIDs,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListWithFilter(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("t.project_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("t.assigned_to=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.ParticipantID != nil {
		args = append(args, *filter.ParticipantID)
		clauses = append(clauses, fmt.Sprintf("(t.assigned_to=$%d OR t.created_by=$%d)", len(args), len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := taskSelect + " WHERE " + joinClauses(clauses) +
		fmt.Sprintf(" GROUP BY t.id ORDER BY t.created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *taskRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Task, error) {
	if len(ids) == 0 {
		return []domain.Task{}, nil
	}
	query := taskSelect + ` WHERE t.id = ANY($1) GROUP BY t.id`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func scanTasks(rows pgx.Rows) ([]domain.Task, error) {
	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Priority,
			&task.Status,
			&task.DueDate,
			&task.AssignedTo,
			&task.ProjectID,
			&task.Attachments,
			&task.CreatedBy,
			&task.CreatedAt,
			&task.UpdatedAt,
			&task.DependencyIDs,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}
