package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/taskpulse/internal/domain"
)

// DepartmentRepository manages department persistence. AddEmployee and
// RemoveEmployee are single-statement set operations so concurrent
// membership changes cannot lose updates.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
	AddEmployee(ctx context.Context, deptID, userID string) (added bool, err error)
	RemoveEmployee(ctx context.Context, deptID, userID string) (removed bool, err error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name, type, description, manager_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		dept.Name,
		dept.Type,
		dept.Description,
		dept.ManagerID,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
	return mapConstraintError(err)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	const query = `
        UPDATE departments SET name=$1, type=$2, description=$3, manager_id=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		dept.Name,
		dept.Type,
		dept.Description,
		dept.ManagerID,
		dept.ID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id=$1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	const query = `
        SELECT d.id, d.name, d.type, d.description, d.manager_id, d.created_at, d.updated_at,
               COALESCE(ARRAY_AGG(de.user_id::text) FILTER (WHERE de.user_id IS NOT NULL), '{}')
        FROM departments d
        LEFT JOIN department_employees de ON de.department_id = d.id
        WHERE d.id=$1
        GROUP BY d.id`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Type,
		&dept.Description,
		&dept.ManagerID,
		&dept.CreatedAt,
		&dept.UpdatedAt,
		&dept.EmployeeIDs,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	const query = `
        SELECT d.id, d.name, d.type, d.description, d.manager_id, d.created_at, d.updated_at,
               COALESCE(ARRAY_AGG(de.user_id::text) FILTER (WHERE de.user_id IS NOT NULL), '{}')
        FROM departments d
        LEFT JOIN department_employees de ON de.department_id = d.id
        GROUP BY d.id
        ORDER BY d.name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(
			&dept.ID,
			&dept.Name,
			&dept.Type,
			&dept.Description,
			&dept.ManagerID,
			&dept.CreatedAt,
			&dept.UpdatedAt,
			&dept.EmployeeIDs,
		); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

func (r *departmentRepository) AddEmployee(ctx context.Context, deptID, userID string) (bool, error) {
	const query = `
        INSERT INTO department_employees (department_id, user_id)
        VALUES ($1,$2)
        ON CONFLICT DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, deptID, userID)
	if err != nil {
		return false, mapConstraintError(err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *departmentRepository) RemoveEmployee(ctx context.Context, deptID, userID string) (bool, error) {
	const query = `
        DELETE FROM department_employees WHERE department_id=$1 AND user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, deptID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
