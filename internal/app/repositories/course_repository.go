package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alvaro/studentreg/internal/app/models"
	"github.com/alvaro/studentreg/internal/db"
	"github.com/alvaro/studentreg/internal/pkg/apperrors"
)

// CourseRepository handles database operations for courses. The (name,
// school, startingYear) triple is unique by convention only; the gateway
// does not reject duplicates on save, the natural-key finder reports them.
type CourseRepository struct {
	db *db.PostgresDB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(database *db.PostgresDB) *CourseRepository {
	return &CourseRepository{
		db: database,
	}
}

// SaveOrUpdate inserts the course when it has no identifier and fully
// replaces the stored record otherwise.
func (r *CourseRepository) SaveOrUpdate(ctx context.Context, course *models.Course) (int64, error) {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if course.IsNew() {
			query := `
				INSERT INTO courses (name, school, starting_year)
				VALUES ($1, $2, $3)
				RETURNING id
			`
			return tx.QueryRow(ctx, query, course.Name, course.School, course.StartingYear).Scan(&course.ID)
		}

		query := `
			UPDATE courses
			SET name = $1, school = $2, starting_year = $3
			WHERE id = $4
		`
		cmdTag, err := tx.Exec(ctx, query, course.Name, course.School, course.StartingYear, course.ID)
		if err != nil {
			return err
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, storageError("saving course", err)
	}
	return course.ID, nil
}

// GetAll retrieves all courses
func (r *CourseRepository) GetAll(ctx context.Context) ([]*models.Course, error) {
	courses, err := r.queryCourses(ctx, `SELECT id, name, school, starting_year FROM courses`)
	if err != nil {
		return nil, storageError("listing courses", err)
	}
	return courses, nil
}

// FindByNameSchoolAndStartingYear retrieves the course with the given
// natural key, or nil when none is stored. More than one match is an
// integrity error.
func (r *CourseRepository) FindByNameSchoolAndStartingYear(ctx context.Context, name, school string, startingYear int) (*models.Course, error) {
	courses, err := r.queryCourses(ctx,
		`SELECT id, name, school, starting_year FROM courses WHERE name = $1 AND school = $2 AND starting_year = $3`,
		name, school, startingYear)
	if err != nil {
		return nil, storageError("finding course", err)
	}

	switch len(courses) {
	case 0:
		return nil, nil
	case 1:
		return courses[0], nil
	default:
		return nil, apperrors.NewIntegrityError(
			fmt.Sprintf("found %d courses named %q at %q starting %d", len(courses), name, school, startingYear))
	}
}

// Delete removes the course with the given identifier. Deleting an unknown
// identifier is a failure.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrNotFound
		}

		_, err := tx.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return storageError("deleting course", err)
	}
	return nil
}

func (r *CourseRepository) queryCourses(ctx context.Context, query string, args ...any) ([]*models.Course, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(
			&course.ID,
			&course.Name,
			&course.School,
			&course.StartingYear,
		); err != nil {
			return nil, err
		}
		courses = append(courses, &course)
	}

	return courses, rows.Err()
}
