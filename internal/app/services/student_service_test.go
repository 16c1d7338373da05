package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/alvaro/studentreg/internal/app/repositories"
	"github.com/alvaro/studentreg/internal/pkg/apperrors"
)

const (
	dniJuan    = "29482182T"
	dniAlberto = "19024608C"
)

type StudentServiceSuite struct {
	suite.Suite

	ctx     context.Context
	store   *repositories.MemoryStore
	service *StudentService
	courses *CourseService
}

func TestStudentServiceSuite(t *testing.T) {
	suite.Run(t, new(StudentServiceSuite))
}

func (s *StudentServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repositories.NewMemoryStore()
	s.service = NewStudentService(s.store.Students(), s.store.Addresses(), s.store.Courses(), s.store.PhoneNumbers())
	s.courses = NewCourseService(s.store.Courses())
}

func (s *StudentServiceSuite) registerJuan() int64 {
	id, err := s.service.SaveOrUpdateStudent(s.ctx, dniJuan, "Juan Alberto García",
		time.Date(1993, time.October, 26, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	return id
}

func (s *StudentServiceSuite) TestSaveOrUpdateStudentCreates() {
	id := s.registerJuan()
	s.Positive(id)

	students, err := s.service.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(students, 1)
	s.Equal(dniJuan, students[0].DNI)
	s.Equal("Juan Alberto García", students[0].Name)
}

func (s *StudentServiceSuite) TestSaveOrUpdateStudentIsIdempotentOnDNI() {
	firstID, err := s.service.SaveOrUpdateStudent(s.ctx, dniAlberto, "Alberto Garcia",
		time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)

	updatedBirthdate := time.Date(1995, time.June, 15, 0, 0, 0, 0, time.UTC)
	secondID, err := s.service.SaveOrUpdateStudent(s.ctx, dniAlberto, "Alberto Garcia", updatedBirthdate)
	s.Require().NoError(err)

	s.Equal(firstID, secondID)

	students, err := s.service.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(students, 1)
	s.True(students[0].Birthdate.Equal(updatedBirthdate))
}

func (s *StudentServiceSuite) TestSaveOrUpdateStudentRejectsBadInput() {
	cases := []struct {
		name      string
		dni       string
		fullName  string
		birthdate time.Time
	}{
		{"wrong checksum letter", "29482182Y", "Juan", time.Date(1993, 10, 26, 0, 0, 0, 0, time.UTC)},
		{"short dni", "2948218T", "Juan", time.Date(1993, 10, 26, 0, 0, 0, 0, time.UTC)},
		{"blank name", dniJuan, "   ", time.Date(1993, 10, 26, 0, 0, 0, 0, time.UTC)},
		{"numeric name", dniJuan, "Juan 2", time.Date(1993, 10, 26, 0, 0, 0, 0, time.UTC)},
		{"zero birthdate", dniJuan, "Juan", time.Time{}},
		{"future birthdate", dniJuan, "Juan", time.Now().Add(24 * time.Hour)},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.SaveOrUpdateStudent(s.ctx, tc.dni, tc.fullName, tc.birthdate)
			s.Require().Error(err)
			s.ErrorIs(err, apperrors.ErrInvalidArgument)
		})
	}

	students, err := s.service.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(students)
}

func (s *StudentServiceSuite) TestSaveOrUpdateAddressRequiresStudent() {
	err := s.service.SaveOrUpdateAddress(s.ctx, dniJuan, "Plaza Nueva nº 123", "Málaga", "29010")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrStudentNotFound)
}

func (s *StudentServiceSuite) TestSaveOrUpdateAddressAttaches() {
	s.registerJuan()

	err := s.service.SaveOrUpdateAddress(s.ctx, dniJuan, "Plaza Nueva nº 123", "Málaga", "29010")
	s.Require().NoError(err)

	students, err := s.service.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(students, 1)
	s.Require().NotNil(students[0].Address)
	s.Equal("29010", students[0].Address.PostalCode)
}

func (s *StudentServiceSuite) TestSaveOrUpdateAddressRejectsBadPostalCode() {
	s.registerJuan()

	err := s.service.SaveOrUpdateAddress(s.ctx, dniJuan, "Plaza Nueva nº 123", "Málaga", "53000")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrInvalidArgument)

	students, err := s.service.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(students, 1)
	s.Nil(students[0].Address)
}

func (s *StudentServiceSuite) TestAddPhoneNumberTwiceThenDeleteLeavesOne() {
	s.registerJuan()

	s.Require().NoError(s.service.AddPhoneNumber(s.ctx, dniJuan, "678419954"))
	s.Require().NoError(s.service.AddPhoneNumber(s.ctx, dniJuan, "798749945"))

	// Re-adding an already linked number changes nothing.
	s.Require().NoError(s.service.AddPhoneNumber(s.ctx, dniJuan, "678419954"))

	s.Require().NoError(s.service.DeletePhoneNumber(s.ctx, dniJuan, "678419954"))

	students, err := s.service.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(students, 1)
	s.Require().Len(students[0].PhoneNumbers, 1)
	s.Equal("798749945", students[0].PhoneNumbers[0].Number)
}

func (s *StudentServiceSuite) TestAddPhoneNumberRejectsBadNumber() {
	s.registerJuan()

	err := s.service.AddPhoneNumber(s.ctx, dniJuan, "578419954")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrInvalidArgument)
}

func (s *StudentServiceSuite) TestSharedPhoneNumberIsLinkedNotDuplicated() {
	s.registerJuan()
	_, err := s.service.SaveOrUpdateStudent(s.ctx, dniAlberto, "Alberto Garcia",
		time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)

	s.Require().NoError(s.service.AddPhoneNumber(s.ctx, dniJuan, "678419954"))
	s.Require().NoError(s.service.AddPhoneNumber(s.ctx, dniAlberto, "678419954"))

	phones, err := s.store.PhoneNumbers().GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(phones, 1)
	s.Len(phones[0].Students, 2)
}

func (s *StudentServiceSuite) TestDeleteStudentKeepsSharedPhoneForOtherOwner() {
	s.registerJuan()
	_, err := s.service.SaveOrUpdateStudent(s.ctx, dniAlberto, "Alberto Garcia",
		time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)

	s.Require().NoError(s.service.AddPhoneNumber(s.ctx, dniJuan, "678419954"))
	s.Require().NoError(s.service.AddPhoneNumber(s.ctx, dniAlberto, "678419954"))

	s.Require().NoError(s.service.DeleteStudent(s.ctx, dniJuan))

	phones, err := s.store.PhoneNumbers().GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(phones, 1)
	s.Require().Len(phones[0].Students, 1)
	s.Equal(dniAlberto, phones[0].Students[0].DNI)
}

func (s *StudentServiceSuite) TestDeletePhoneNumberIsNoOpWhenAbsent() {
	s.Require().NoError(s.service.DeletePhoneNumber(s.ctx, dniJuan, "678419954"))

	s.registerJuan()
	s.Require().NoError(s.service.DeletePhoneNumber(s.ctx, dniJuan, "678419954"))

	s.Require().NoError(s.service.AddPhoneNumber(s.ctx, dniJuan, "678419954"))
	s.Require().NoError(s.service.DeletePhoneNumber(s.ctx, dniJuan, "798749945"))

	students, err := s.service.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(students, 1)
	s.Len(students[0].PhoneNumbers, 1)
}

func (s *StudentServiceSuite) TestSetCourse() {
	s.registerJuan()
	_, err := s.courses.Save(s.ctx, "Desarrollo en Aplicaciones Multiplataforma", "IES Pablo Picasso", 2025)
	s.Require().NoError(err)

	err = s.service.SetCourse(s.ctx, dniJuan, "Desarrollo en Aplicaciones Multiplataforma", "IES Pablo Picasso", 2025)
	s.Require().NoError(err)

	students, err := s.service.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(students, 1)
	s.Require().NotNil(students[0].Course)
	s.Equal("IES Pablo Picasso", students[0].Course.School)
}

func (s *StudentServiceSuite) TestSetCourseUnknownCourseLeavesStudentUnchanged() {
	s.registerJuan()

	err := s.service.SetCourse(s.ctx, dniJuan, "ghost course", "nowhere", 2025)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrCourseNotFound)

	students, err := s.service.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(students, 1)
	s.Nil(students[0].Course)
}

func (s *StudentServiceSuite) TestSetCourseUnknownStudentFails() {
	_, err := s.courses.Save(s.ctx, "Desarrollo en Aplicaciones Multiplataforma", "IES Pablo Picasso", 2025)
	s.Require().NoError(err)

	err = s.service.SetCourse(s.ctx, dniJuan, "Desarrollo en Aplicaciones Multiplataforma", "IES Pablo Picasso", 2025)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrStudentNotFound)
}

func (s *StudentServiceSuite) TestDeleteStudentIsNoOpWhenAbsent() {
	s.Require().NoError(s.service.DeleteStudent(s.ctx, dniJuan))
}

func (s *StudentServiceSuite) TestDeleteStudentRemovesAddress() {
	s.registerJuan()
	s.Require().NoError(s.service.SaveOrUpdateAddress(s.ctx, dniJuan, "Plaza Nueva nº 123", "Málaga", "29010"))

	s.Require().NoError(s.service.DeleteStudent(s.ctx, dniJuan))

	students, err := s.service.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(students)

	addresses, err := s.store.Addresses().GetAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(addresses)
}
