package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alvaro/studentreg/internal/app/models"
	"github.com/alvaro/studentreg/internal/pkg/apperrors"
)

// MemoryStore backs in-memory gateways that mirror the PostgreSQL contract
// without a database, including cascades, orphan removal and the unique
// indexes on dni and phone number. The gateways share one store because
// saving a student touches addresses, phone numbers and the association
// set. They intentionally favor clarity over performance.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64

	students     map[int64]studentRow
	addresses    map[int64]models.Address
	courses      map[int64]models.Course
	phoneNumbers map[int64]phoneNumberRow
	associations map[associationKey]struct{}
}

type studentRow struct {
	id        int64
	dni       string
	name      string
	birthdate time.Time
	addressID int64 // 0 = none
	courseID  int64 // 0 = none
}

type phoneNumberRow struct {
	id     int64
	number string
}

// associationKey is one row of the student/phone number join set.
type associationKey struct {
	studentID     int64
	phoneNumberID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		students:     make(map[int64]studentRow),
		addresses:    make(map[int64]models.Address),
		courses:      make(map[int64]models.Course),
		phoneNumbers: make(map[int64]phoneNumberRow),
		associations: make(map[associationKey]struct{}),
	}
}

// Students returns the student gateway view of the store.
func (m *MemoryStore) Students() *MemoryStudentGateway {
	return &MemoryStudentGateway{store: m}
}

// Addresses returns the address gateway view of the store.
func (m *MemoryStore) Addresses() *MemoryAddressGateway {
	return &MemoryAddressGateway{store: m}
}

// Courses returns the course gateway view of the store.
func (m *MemoryStore) Courses() *MemoryCourseGateway {
	return &MemoryCourseGateway{store: m}
}

// PhoneNumbers returns the phone number gateway view of the store.
func (m *MemoryStore) PhoneNumbers() *MemoryPhoneNumberGateway {
	return &MemoryPhoneNumberGateway{store: m}
}

func (m *MemoryStore) allocID() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) phoneIDByNumber(number string) int64 {
	for id, row := range m.phoneNumbers {
		if row.number == number {
			return id
		}
	}
	return 0
}

// MemoryStudentGateway implements StudentGateway over a MemoryStore.
type MemoryStudentGateway struct {
	store *MemoryStore
}

// SaveOrUpdate mirrors the PostgreSQL gateway: address cascade with orphan
// removal, insertion of new phone numbers, association rewrite, unique dni.
func (g *MemoryStudentGateway) SaveOrUpdate(_ context.Context, student *models.Student) (int64, error) {
	m := g.store
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, row := range m.students {
		if row.dni == student.DNI && id != student.ID {
			return 0, apperrors.NewStorageError(fmt.Sprintf("saving student: dni %s already in use", student.DNI))
		}
	}

	var addressID int64
	if student.Address != nil {
		if student.Address.IsNew() {
			student.Address.ID = m.allocID()
		} else if _, ok := m.addresses[student.Address.ID]; !ok {
			return 0, apperrors.ErrNotFound
		}
		m.addresses[student.Address.ID] = *student.Address
		addressID = student.Address.ID
	}

	var courseID int64
	if student.Course != nil {
		if _, ok := m.courses[student.Course.ID]; !ok {
			return 0, apperrors.NewStorageError("saving student: referenced course does not exist")
		}
		courseID = student.Course.ID
	}

	if student.IsNew() {
		student.ID = m.allocID()
	} else {
		previous, ok := m.students[student.ID]
		if !ok {
			return 0, apperrors.ErrNotFound
		}
		if previous.addressID != 0 && previous.addressID != addressID {
			delete(m.addresses, previous.addressID)
		}
	}

	for _, phone := range student.PhoneNumbers {
		if phone.IsNew() {
			if m.phoneIDByNumber(phone.Number) != 0 {
				return 0, apperrors.NewStorageError(fmt.Sprintf("saving student: number %s already in use", phone.Number))
			}
			phone.ID = m.allocID()
			m.phoneNumbers[phone.ID] = phoneNumberRow{id: phone.ID, number: phone.Number}
		} else if _, ok := m.phoneNumbers[phone.ID]; !ok {
			return 0, apperrors.ErrNotFound
		}
	}

	for key := range m.associations {
		if key.studentID == student.ID {
			delete(m.associations, key)
		}
	}
	for _, phone := range student.PhoneNumbers {
		m.associations[associationKey{studentID: student.ID, phoneNumberID: phone.ID}] = struct{}{}
	}

	m.students[student.ID] = studentRow{
		id:        student.ID,
		dni:       student.DNI,
		name:      student.Name,
		birthdate: student.Birthdate,
		addressID: addressID,
		courseID:  courseID,
	}

	return student.ID, nil
}

// GetAll returns all students with relations, ordered by identifier.
func (g *MemoryStudentGateway) GetAll(_ context.Context) ([]*models.Student, error) {
	m := g.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.students))
	for id := range m.students {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	students := make([]*models.Student, 0, len(ids))
	for _, id := range ids {
		students = append(students, m.materializeStudent(m.students[id]))
	}
	return students, nil
}

// FindByDNI returns the student with the given DNI, nil when absent, and an
// integrity error when the store holds more than one.
func (g *MemoryStudentGateway) FindByDNI(_ context.Context, dni string) (*models.Student, error) {
	m := g.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, err := m.studentRowByDNI(dni)
	if err != nil || row == nil {
		return nil, err
	}
	return m.materializeStudent(*row), nil
}

// Delete removes the student, its association rows and its owned address.
func (g *MemoryStudentGateway) Delete(_ context.Context, id int64) error {
	m := g.store
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteStudentRow(id)
}

// DeleteByDNI resolves the student by DNI and removes it.
func (g *MemoryStudentGateway) DeleteByDNI(_ context.Context, dni string) error {
	m := g.store
	m.mu.Lock()
	defer m.mu.Unlock()

	row, err := m.studentRowByDNI(dni)
	if err != nil {
		return err
	}
	if row == nil {
		return apperrors.ErrNotFound
	}
	return m.deleteStudentRow(row.id)
}

func (m *MemoryStore) studentRowByDNI(dni string) (*studentRow, error) {
	var matches []studentRow
	for _, row := range m.students {
		if row.dni == dni {
			matches = append(matches, row)
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, apperrors.NewIntegrityError(fmt.Sprintf("found %d students with dni %s", len(matches), dni))
	}
}

func (m *MemoryStore) deleteStudentRow(id int64) error {
	row, ok := m.students[id]
	if !ok {
		return apperrors.ErrNotFound
	}

	for key := range m.associations {
		if key.studentID == id {
			delete(m.associations, key)
		}
	}
	if row.addressID != 0 {
		delete(m.addresses, row.addressID)
	}
	delete(m.students, id)
	return nil
}

func (m *MemoryStore) materializeStudent(row studentRow) *models.Student {
	student := &models.Student{
		ID:        row.id,
		DNI:       row.dni,
		Name:      row.name,
		Birthdate: row.birthdate,
	}

	if row.addressID != 0 {
		if address, ok := m.addresses[row.addressID]; ok {
			copied := address
			student.Address = &copied
		}
	}
	if row.courseID != 0 {
		if course, ok := m.courses[row.courseID]; ok {
			copied := course
			student.Course = &copied
		}
	}

	for _, phoneID := range m.phoneIDsOfStudent(row.id) {
		student.PhoneNumbers = append(student.PhoneNumbers, m.materializePhoneNumber(m.phoneNumbers[phoneID]))
	}

	return student
}

// materializePhoneNumber builds a phone number entity with its associated
// students in shallow form, without their own relations.
func (m *MemoryStore) materializePhoneNumber(row phoneNumberRow) *models.PhoneNumber {
	phone := &models.PhoneNumber{ID: row.id, Number: row.number}

	var studentIDs []int64
	for key := range m.associations {
		if key.phoneNumberID == row.id {
			studentIDs = append(studentIDs, key.studentID)
		}
	}
	sort.Slice(studentIDs, func(i, j int) bool { return studentIDs[i] < studentIDs[j] })

	for _, id := range studentIDs {
		if s, ok := m.students[id]; ok {
			phone.Students = append(phone.Students, &models.Student{
				ID:        s.id,
				DNI:       s.dni,
				Name:      s.name,
				Birthdate: s.birthdate,
			})
		}
	}

	return phone
}

func (m *MemoryStore) phoneIDsOfStudent(studentID int64) []int64 {
	var ids []int64
	for key := range m.associations {
		if key.studentID == studentID {
			ids = append(ids, key.phoneNumberID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MemoryAddressGateway implements AddressGateway over a MemoryStore.
type MemoryAddressGateway struct {
	store *MemoryStore
}

// SaveOrUpdate inserts or replaces the address.
func (g *MemoryAddressGateway) SaveOrUpdate(_ context.Context, address *models.Address) (int64, error) {
	m := g.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if address.IsNew() {
		address.ID = m.allocID()
	} else if _, ok := m.addresses[address.ID]; !ok {
		return 0, apperrors.ErrNotFound
	}
	m.addresses[address.ID] = *address
	return address.ID, nil
}

// GetAll returns all addresses ordered by identifier.
func (g *MemoryAddressGateway) GetAll(_ context.Context) ([]*models.Address, error) {
	m := g.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	addresses := make([]*models.Address, 0, len(m.addresses))
	for _, address := range m.addresses {
		copied := address
		addresses = append(addresses, &copied)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i].ID < addresses[j].ID })
	return addresses, nil
}

// FindByStreetAndCity returns the matching address, nil when absent, and an
// integrity error on more than one match.
func (g *MemoryAddressGateway) FindByStreetAndCity(_ context.Context, street, city string) (*models.Address, error) {
	m := g.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []models.Address
	for _, address := range m.addresses {
		if address.StreetAddress == street && address.City == city {
			matches = append(matches, address)
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		copied := matches[0]
		return &copied, nil
	default:
		return nil, apperrors.NewIntegrityError(
			fmt.Sprintf("found %d addresses for street %q and city %q", len(matches), street, city))
	}
}

// Delete removes the address. Deleting an unknown identifier is a failure.
func (g *MemoryAddressGateway) Delete(_ context.Context, id int64) error {
	m := g.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.addresses[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.addresses, id)
	return nil
}

// MemoryCourseGateway implements CourseGateway over a MemoryStore.
type MemoryCourseGateway struct {
	store *MemoryStore
}

// SaveOrUpdate inserts or replaces the course. Duplicate natural keys are
// not rejected; the triple is unique by convention only.
func (g *MemoryCourseGateway) SaveOrUpdate(_ context.Context, course *models.Course) (int64, error) {
	m := g.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if course.IsNew() {
		course.ID = m.allocID()
	} else if _, ok := m.courses[course.ID]; !ok {
		return 0, apperrors.ErrNotFound
	}
	m.courses[course.ID] = *course
	return course.ID, nil
}

// GetAll returns all courses ordered by identifier.
func (g *MemoryCourseGateway) GetAll(_ context.Context) ([]*models.Course, error) {
	m := g.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	courses := make([]*models.Course, 0, len(m.courses))
	for _, course := range m.courses {
		copied := course
		courses = append(courses, &copied)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

// FindByNameSchoolAndStartingYear returns the matching course, nil when
// absent, and an integrity error on more than one match.
func (g *MemoryCourseGateway) FindByNameSchoolAndStartingYear(_ context.Context, name, school string, startingYear int) (*models.Course, error) {
	m := g.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []models.Course
	for _, course := range m.courses {
		if course.Name == name && course.School == school && course.StartingYear == startingYear {
			matches = append(matches, course)
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		copied := matches[0]
		return &copied, nil
	default:
		return nil, apperrors.NewIntegrityError(
			fmt.Sprintf("found %d courses named %q at %q starting %d", len(matches), name, school, startingYear))
	}
}

// Delete removes the course. Deleting an unknown identifier is a failure.
func (g *MemoryCourseGateway) Delete(_ context.Context, id int64) error {
	m := g.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.courses[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.courses, id)
	return nil
}

// MemoryPhoneNumberGateway implements PhoneNumberGateway over a MemoryStore.
type MemoryPhoneNumberGateway struct {
	store *MemoryStore
}

// SaveOrUpdate inserts or replaces the phone number and rewrites its
// association rows to match the entity's student set.
func (g *MemoryPhoneNumberGateway) SaveOrUpdate(_ context.Context, phone *models.PhoneNumber) (int64, error) {
	m := g.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.phoneIDByNumber(phone.Number); existing != 0 && existing != phone.ID {
		return 0, apperrors.NewStorageError(fmt.Sprintf("saving phone number: number %s already in use", phone.Number))
	}

	if phone.IsNew() {
		phone.ID = m.allocID()
	} else if _, ok := m.phoneNumbers[phone.ID]; !ok {
		return 0, apperrors.ErrNotFound
	}
	m.phoneNumbers[phone.ID] = phoneNumberRow{id: phone.ID, number: phone.Number}

	for key := range m.associations {
		if key.phoneNumberID == phone.ID {
			delete(m.associations, key)
		}
	}
	for _, student := range phone.Students {
		if _, ok := m.students[student.ID]; !ok {
			return 0, apperrors.NewStorageError("saving phone number: referenced student does not exist")
		}
		m.associations[associationKey{studentID: student.ID, phoneNumberID: phone.ID}] = struct{}{}
	}

	return phone.ID, nil
}

// GetAll returns all phone numbers ordered by identifier.
func (g *MemoryPhoneNumberGateway) GetAll(_ context.Context) ([]*models.PhoneNumber, error) {
	m := g.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.phoneNumbers))
	for id := range m.phoneNumbers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	phones := make([]*models.PhoneNumber, 0, len(ids))
	for _, id := range ids {
		phones = append(phones, m.materializePhoneNumber(m.phoneNumbers[id]))
	}
	return phones, nil
}

// FindByNumber returns the matching phone number, nil when absent, and an
// integrity error on more than one match.
func (g *MemoryPhoneNumberGateway) FindByNumber(_ context.Context, number string) (*models.PhoneNumber, error) {
	m := g.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []phoneNumberRow
	for _, row := range m.phoneNumbers {
		if row.number == number {
			matches = append(matches, row)
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return m.materializePhoneNumber(matches[0]), nil
	default:
		return nil, apperrors.NewIntegrityError(fmt.Sprintf("found %d phone numbers with number %s", len(matches), number))
	}
}

// Delete removes the phone number and its association rows. Deleting an
// unknown identifier is a failure.
func (g *MemoryPhoneNumberGateway) Delete(_ context.Context, id int64) error {
	m := g.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.phoneNumbers[id]; !ok {
		return apperrors.ErrNotFound
	}
	for key := range m.associations {
		if key.phoneNumberID == id {
			delete(m.associations, key)
		}
	}
	delete(m.phoneNumbers, id)
	return nil
}
