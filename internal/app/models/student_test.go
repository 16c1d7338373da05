package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddPhoneNumberLinksBothSides(t *testing.T) {
	student := &Student{DNI: "29482182T"}
	phone := &PhoneNumber{Number: "678987654"}

	student.AddPhoneNumber(phone)

	assert.True(t, student.HasPhoneNumber("678987654"))
	assert.True(t, phone.HasStudent("29482182T"))
}

func TestAddPhoneNumberIsIdempotent(t *testing.T) {
	student := &Student{DNI: "29482182T"}
	phone := &PhoneNumber{Number: "678987654"}

	student.AddPhoneNumber(phone)
	student.AddPhoneNumber(phone)

	assert.Len(t, student.PhoneNumbers, 1)
	assert.Len(t, phone.Students, 1)
}

func TestAddPhoneNumberMatchesByNaturalKey(t *testing.T) {
	student := &Student{DNI: "29482182T"}
	student.AddPhoneNumber(&PhoneNumber{Number: "678987654"})

	// The same number loaded independently is recognized as already linked.
	student.AddPhoneNumber(&PhoneNumber{ID: 7, Number: "678987654"})

	assert.Len(t, student.PhoneNumbers, 1)
}

func TestRemovePhoneNumberUnlinksBothSides(t *testing.T) {
	student := &Student{DNI: "29482182T"}
	phone := &PhoneNumber{Number: "678987654"}
	student.AddPhoneNumber(phone)

	student.RemovePhoneNumber(phone)

	assert.Empty(t, student.PhoneNumbers)
	assert.Empty(t, phone.Students)
}

func TestRemovePhoneNumberNeverLinkedIsNoOp(t *testing.T) {
	student := &Student{DNI: "29482182T"}
	student.AddPhoneNumber(&PhoneNumber{Number: "678987654"})

	student.RemovePhoneNumber(&PhoneNumber{Number: "698742345"})
	student.RemovePhoneNumber(nil)

	assert.Len(t, student.PhoneNumbers, 1)
}

func TestIsNew(t *testing.T) {
	assert.True(t, (&Student{}).IsNew())
	assert.False(t, (&Student{ID: 3}).IsNew())
	assert.True(t, (&Address{}).IsNew())
	assert.True(t, (&Course{}).IsNew())
	assert.True(t, (&PhoneNumber{}).IsNew())
}
