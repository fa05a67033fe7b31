package address

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestToResponse(t *testing.T) {
	line2 := "Apt 4"
	a := &Address{
		ID:        uuid.New(),
		Name:      "John",
		Address1:  "Street 1",
		Address2:  &line2,
		Postal:    "12345",
		IsDefault: true,
	}

	res := ToResponse(a)
	assert.Equal(t, a.ID.String(), res.ID)
	assert.Equal(t, "Street 1", res.AddressLine1)
	assert.Equal(t, &line2, res.AddressLine2)
	assert.Equal(t, "12345", res.PostalCode)
	assert.True(t, res.IsDefault)
	assert.Len(t, ToResponses([]*Address{a}), 1)
}
