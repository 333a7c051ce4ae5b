package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/taskpulse/internal/domain"
)

// ProjectFilter captures project listing parameters. MemberID restricts the
// result to projects where that user is manager or on the team.
type ProjectFilter struct {
	DepartmentID *string
	Status       *domain.ProjectStatus
	MemberID     *string
	Limit        int
	Offset       int
}

// ProjectRepository encapsulates project persistence.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListWithFilter(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	AddTeamMember(ctx context.Context, projectID, userID string) (added bool, err error)
	RemoveTeamMember(ctx context.Context, projectID, userID string) (removed bool, err error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository instantiates repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

const projectSelect = `
        SELECT p.id, p.name, p.description, p.status, p.start_date, p.end_date,
               p.manager_id, p.department_id, p.priority, p.budget, p.created_at, p.updated_at,
               COALESCE(ARRAY_AGG(DISTINCT pt.user_id::text) FILTER (WHERE pt.user_id IS NOT NULL), '{}'),
               COALESCE(ARRAY_AGG(DISTINCT t.id::text) FILTER (WHERE t.id IS NOT NULL), '{}')
        FROM projects p
        LEFT JOIN project_team pt ON pt.project_id = p.id
        LEFT JOIN tasks t ON t.project_id = p.id`

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO projects (name, description, status, start_date, end_date, manager_id, department_id, priority, budget)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		project.Name,
		project.Description,
		project.Status,
		project.StartDate,
		project.EndDate,
		project.ManagerID,
		project.DepartmentID,
		project.Priority,
		project.Budget,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return mapConstraintError(err)
	}

	for _, userID := range project.TeamIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO project_team (project_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			project.ID, userID); err != nil {
			return mapConstraintError(err)
		}
	}
	return tx.Commit(ctx)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE projects SET name=$1, description=$2, status=$3, start_date=$4, end_date=$5,
            manager_id=$6, department_id=$7, priority=$8, budget=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := tx.Exec(ctx, query,
		project.Name,
		project.Description,
		project.Status,
		project.StartDate,
		project.EndDate,
		project.ManagerID,
		project.DepartmentID,
		project.Priority,
		project.Budget,
		project.ID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM project_team WHERE project_id=$1`, project.ID); err != nil {
		return err
	}
	for _, userID := range project.TeamIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO project_team (project_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			project.ID, userID); err != nil {
			return mapConstraintError(err)
		}
	}
	return tx.Commit(ctx)
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := projectSelect + ` WHERE p.id=$1 GROUP BY p.id`
	var project domain.Project
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.StartDate,
		&project.EndDate,
		&project.ManagerID,
		&project.DepartmentID,
		&project.Priority,
		&project.Budget,
		&project.CreatedAt,
		&project.UpdatedAt,
		&project.TeamIDs,
		&project.TaskIDs,
	); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListWithFilter(ctx context.Context, filter ProjectFilter) ([]domain.Project, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("p.department_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("p.status=$%d", len(args)))
	}
	if filter.MemberID != nil {
		args = append(args, *filter.MemberID)
		clauses = append(clauses, fmt.Sprintf(
			"(p.manager_id=$%d OR EXISTS (SELECT 1 FROM project_team m WHERE m.project_id=p.id AND m.user_id=$%d))",
			len(args), len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := projectSelect + " WHERE " + joinClauses(clauses) +
		fmt.Sprintf(" GROUP BY p.id ORDER BY p.start_date ASC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.Status,
			&project.StartDate,
			&project.EndDate,
			&project.ManagerID,
			&project.DepartmentID,
			&project.Priority,
			&project.Budget,
			&project.CreatedAt,
			&project.UpdatedAt,
			&project.TeamIDs,
			&project.TaskIDs,
		); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}

func (r *projectRepository) AddTeamMember(ctx context.Context, projectID, userID string) (bool, error) {
	const query = `
        INSERT INTO project_team (project_id, user_id)
        VALUES ($1,$2)
        ON CONFLICT DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, projectID, userID)
	if err != nil {
		return false, mapConstraintError(err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *projectRepository) RemoveTeamMember(ctx context.Context, projectID, userID string) (bool, error) {
	const query = `
        DELETE FROM project_team WHERE project_id=$1 AND user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, projectID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
