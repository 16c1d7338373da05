package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alvaro/studentreg/internal/app/models"
	"github.com/alvaro/studentreg/internal/app/repositories"
	"github.com/alvaro/studentreg/internal/pkg/apperrors"
	"github.com/alvaro/studentreg/internal/pkg/logger"
	"github.com/alvaro/studentreg/internal/pkg/validation"
)

// StudentService implements student registration operations. Students are
// addressed by DNI throughout; surrogate identifiers stay inside the
// gateways. Validation happens here, before any storage is touched.
type StudentService struct {
	studentGateway repositories.StudentGateway
	addressGateway repositories.AddressGateway
	courseGateway  repositories.CourseGateway
	phoneGateway   repositories.PhoneNumberGateway
}

// NewStudentService creates a new StudentService.
func NewStudentService(
	studentGateway repositories.StudentGateway,
	addressGateway repositories.AddressGateway,
	courseGateway repositories.CourseGateway,
	phoneGateway repositories.PhoneNumberGateway,
) *StudentService {
	return &StudentService{
		studentGateway: studentGateway,
		addressGateway: addressGateway,
		courseGateway:  courseGateway,
		phoneGateway:   phoneGateway,
	}
}

// SaveOrUpdateStudent registers the student with the given DNI, creating it
// when absent and updating its name and birthdate when present. Relations of
// an existing student are untouched. Returns the student identifier.
func (s *StudentService) SaveOrUpdateStudent(ctx context.Context, dni, name string, birthdate time.Time) (int64, error) {
	if !validation.IsValidDNI(dni) {
		return 0, apperrors.NewArgumentError(fmt.Sprintf("invalid dni: %s", dni))
	}
	if !validation.IsValidStudentName(name) {
		return 0, apperrors.NewArgumentError(fmt.Sprintf("invalid student name: %q", name))
	}
	if !validation.IsValidBirthdate(birthdate) {
		return 0, apperrors.NewArgumentError(fmt.Sprintf("invalid birthdate: %s", birthdate))
	}

	student, err := s.studentGateway.FindByDNI(ctx, dni)
	if err != nil {
		return 0, err
	}
	if student == nil {
		student = &models.Student{DNI: dni}
	}
	student.Name = name
	student.Birthdate = birthdate

	id, err := s.studentGateway.SaveOrUpdate(ctx, student)
	if err != nil {
		return 0, err
	}

	logger.Debug().Str("dni", dni).Int64("id", id).Msg("Student saved")
	return id, nil
}

// SaveOrUpdateAddress attaches an address to the student with the given DNI,
// replacing any previous one. An address already stored for the same street
// and city is reused and overwritten with the given fields.
func (s *StudentService) SaveOrUpdateAddress(ctx context.Context, dni, street, city, postalCode string) error {
	student, err := s.studentGateway.FindByDNI(ctx, dni)
	if err != nil {
		return err
	}
	if student == nil {
		return apperrors.ErrStudentNotFound
	}

	if !validation.IsValidStreetAddress(street) {
		return apperrors.NewArgumentError(fmt.Sprintf("invalid street address: %q", street))
	}
	if !validation.IsValidCity(city) {
		return apperrors.NewArgumentError(fmt.Sprintf("invalid city: %q", city))
	}
	if !validation.IsValidPostalCode(postalCode) {
		return apperrors.NewArgumentError(fmt.Sprintf("invalid postal code: %s", postalCode))
	}

	address, err := s.addressGateway.FindByStreetAndCity(ctx, street, city)
	if err != nil {
		return err
	}
	if address == nil {
		address = &models.Address{}
	}
	address.StreetAddress = street
	address.City = city
	address.PostalCode = postalCode

	student.Address = address
	if _, err := s.studentGateway.SaveOrUpdate(ctx, student); err != nil {
		return err
	}

	logger.Debug().Str("dni", dni).Str("city", city).Msg("Address saved")
	return nil
}

// AddPhoneNumber associates a phone number with the student with the given
// DNI. A number already stored is linked to the student rather than
// duplicated; a number already linked is a no-op.
func (s *StudentService) AddPhoneNumber(ctx context.Context, dni, number string) error {
	if !validation.IsValidNumber(number) {
		return apperrors.NewArgumentError(fmt.Sprintf("invalid phone number: %s", number))
	}

	student, err := s.studentGateway.FindByDNI(ctx, dni)
	if err != nil {
		return err
	}
	if student == nil {
		return apperrors.ErrStudentNotFound
	}
	if student.HasPhoneNumber(number) {
		return nil
	}

	phone, err := s.phoneGateway.FindByNumber(ctx, number)
	if err != nil {
		return err
	}
	if phone == nil {
		phone = &models.PhoneNumber{Number: number}
	}

	student.AddPhoneNumber(phone)
	if _, err := s.studentGateway.SaveOrUpdate(ctx, student); err != nil {
		return err
	}

	logger.Debug().Str("dni", dni).Str("number", number).Msg("Phone number added")
	return nil
}

// DeletePhoneNumber unlinks a phone number from the student with the given
// DNI. The number itself stays stored; other students keep it. When the
// student, the number or the association does not exist, nothing happens.
func (s *StudentService) DeletePhoneNumber(ctx context.Context, dni, number string) error {
	student, err := s.studentGateway.FindByDNI(ctx, dni)
	if err != nil {
		return err
	}
	if student == nil {
		return nil
	}

	phone, err := s.phoneGateway.FindByNumber(ctx, number)
	if err != nil {
		return err
	}
	if phone == nil || !student.HasPhoneNumber(number) {
		return nil
	}

	// Both sides own association rows, so both are saved.
	student.RemovePhoneNumber(phone)
	if _, err := s.studentGateway.SaveOrUpdate(ctx, student); err != nil {
		return err
	}
	if _, err := s.phoneGateway.SaveOrUpdate(ctx, phone); err != nil {
		return err
	}

	logger.Debug().Str("dni", dni).Str("number", number).Msg("Phone number removed")
	return nil
}

// SetCourse enrolls the student with the given DNI in the course with the
// given natural key. Both must already exist.
func (s *StudentService) SetCourse(ctx context.Context, dni, courseName, school string, startingYear int) error {
	course, err := s.courseGateway.FindByNameSchoolAndStartingYear(ctx, courseName, school, startingYear)
	if err != nil {
		return err
	}
	if course == nil {
		return apperrors.ErrCourseNotFound
	}

	student, err := s.studentGateway.FindByDNI(ctx, dni)
	if err != nil {
		return err
	}
	if student == nil {
		return apperrors.ErrStudentNotFound
	}

	student.Course = course
	if _, err := s.studentGateway.SaveOrUpdate(ctx, student); err != nil {
		return err
	}

	logger.Debug().Str("dni", dni).Str("course", courseName).Msg("Course set")
	return nil
}

// DeleteStudent removes the student with the given DNI together with its
// address. Phone numbers stay stored. Deleting an unknown DNI is a no-op.
func (s *StudentService) DeleteStudent(ctx context.Context, dni string) error {
	student, err := s.studentGateway.FindByDNI(ctx, dni)
	if err != nil {
		return err
	}
	if student == nil {
		return nil
	}

	if err := s.studentGateway.DeleteByDNI(ctx, dni); err != nil {
		return err
	}

	logger.Debug().Str("dni", dni).Msg("Student deleted")
	return nil
}

// GetAll returns all registered students with their relations.
func (s *StudentService) GetAll(ctx context.Context) ([]*models.Student, error) {
	return s.studentGateway.GetAll(ctx)
}
