package services

import (
	"context"
	"fmt"

	"github.com/alvaro/studentreg/internal/app/models"
	"github.com/alvaro/studentreg/internal/app/repositories"
	"github.com/alvaro/studentreg/internal/pkg/apperrors"
	"github.com/alvaro/studentreg/internal/pkg/logger"
	"github.com/alvaro/studentreg/internal/pkg/validation"
)

// CourseService implements course catalog operations. Courses are addressed
// by their (name, school, startingYear) triple.
type CourseService struct {
	courseGateway repositories.CourseGateway
}

// NewCourseService creates a new CourseService.
func NewCourseService(courseGateway repositories.CourseGateway) *CourseService {
	return &CourseService{courseGateway: courseGateway}
}

// Save registers the course with the given natural key, reusing an already
// stored one. Returns the course identifier.
func (s *CourseService) Save(ctx context.Context, name, school string, startingYear int) (int64, error) {
	if !validation.IsValidCourseName(name) {
		return 0, apperrors.NewArgumentError(fmt.Sprintf("invalid course name: %q", name))
	}
	if !validation.IsValidSchool(school) {
		return 0, apperrors.NewArgumentError(fmt.Sprintf("invalid school: %q", school))
	}

	course, err := s.courseGateway.FindByNameSchoolAndStartingYear(ctx, name, school, startingYear)
	if err != nil {
		return 0, err
	}
	if course != nil {
		return course.ID, nil
	}

	course = &models.Course{Name: name, School: school, StartingYear: startingYear}
	id, err := s.courseGateway.SaveOrUpdate(ctx, course)
	if err != nil {
		return 0, err
	}

	logger.Debug().Str("course", name).Str("school", school).Int64("id", id).Msg("Course saved")
	return id, nil
}

// GetAll returns all registered courses.
func (s *CourseService) GetAll(ctx context.Context) ([]*models.Course, error) {
	return s.courseGateway.GetAll(ctx)
}

// FindByNameSchoolAndStartingYear returns the course with the given natural
// key, or nil when none is stored.
func (s *CourseService) FindByNameSchoolAndStartingYear(ctx context.Context, name, school string, startingYear int) (*models.Course, error) {
	return s.courseGateway.FindByNameSchoolAndStartingYear(ctx, name, school, startingYear)
}

// DeleteCourse removes the course with the given natural key. The course
// must exist.
func (s *CourseService) DeleteCourse(ctx context.Context, name, school string, startingYear int) error {
	course, err := s.courseGateway.FindByNameSchoolAndStartingYear(ctx, name, school, startingYear)
	if err != nil {
		return err
	}
	if course == nil {
		return apperrors.ErrCourseNotFound
	}

	if err := s.courseGateway.Delete(ctx, course.ID); err != nil {
		return err
	}

	logger.Debug().Str("course", name).Str("school", school).Msg("Course deleted")
	return nil
}
