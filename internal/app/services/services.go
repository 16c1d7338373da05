package services

import (
	"github.com/alvaro/studentreg/internal/app/repositories"
)

// Services holds all service instances.
type Services struct {
	StudentService *StudentService
	CourseService  *CourseService
}

// NewServices wires the services over a set of gateways.
func NewServices(repos *repositories.Repositories) *Services {
	return &Services{
		StudentService: NewStudentService(
			repos.StudentRepository,
			repos.AddressRepository,
			repos.CourseRepository,
			repos.PhoneNumberRepository,
		),
		CourseService: NewCourseService(repos.CourseRepository),
	}
}
