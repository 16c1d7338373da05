package repositories

import (
	"context"

	"github.com/alvaro/studentreg/internal/app/models"
	"github.com/alvaro/studentreg/internal/db"
)

// Gateway interfaces share a uniform contract: SaveOrUpdate inserts when the
// entity carries no identifier and fully replaces the stored record
// otherwise, each call runs in its own transaction, Delete fails on an
// unknown identifier, and natural-key finders return (nil, nil) when nothing
// matches and an integrity error when more than one record does.

// StudentGateway persists students together with their owned address and
// phone number associations.
type StudentGateway interface {
	SaveOrUpdate(ctx context.Context, student *models.Student) (int64, error)
	GetAll(ctx context.Context) ([]*models.Student, error)
	Delete(ctx context.Context, id int64) error
	DeleteByDNI(ctx context.Context, dni string) error
	FindByDNI(ctx context.Context, dni string) (*models.Student, error)
}

// AddressGateway persists addresses.
type AddressGateway interface {
	SaveOrUpdate(ctx context.Context, address *models.Address) (int64, error)
	GetAll(ctx context.Context) ([]*models.Address, error)
	Delete(ctx context.Context, id int64) error
	FindByStreetAndCity(ctx context.Context, street, city string) (*models.Address, error)
}

// CourseGateway persists courses.
type CourseGateway interface {
	SaveOrUpdate(ctx context.Context, course *models.Course) (int64, error)
	GetAll(ctx context.Context) ([]*models.Course, error)
	Delete(ctx context.Context, id int64) error
	FindByNameSchoolAndStartingYear(ctx context.Context, name, school string, startingYear int) (*models.Course, error)
}

// PhoneNumberGateway persists phone numbers and their student associations.
type PhoneNumberGateway interface {
	SaveOrUpdate(ctx context.Context, phone *models.PhoneNumber) (int64, error)
	GetAll(ctx context.Context) ([]*models.PhoneNumber, error)
	Delete(ctx context.Context, id int64) error
	FindByNumber(ctx context.Context, number string) (*models.PhoneNumber, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	StudentRepository     *StudentRepository
	AddressRepository     *AddressRepository
	CourseRepository      *CourseRepository
	PhoneNumberRepository *PhoneNumberRepository
}

// NewRepositories initializes all repositories over one shared connection.
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		StudentRepository:     NewStudentRepository(database),
		AddressRepository:     NewAddressRepository(database),
		CourseRepository:      NewCourseRepository(database),
		PhoneNumberRepository: NewPhoneNumberRepository(database),
	}
}
