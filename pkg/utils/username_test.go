package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	for _, ok := range []string{"alice", "bob.smith", "nguyễn", "x", "all_hands"} {
		assert.NoError(t, ValidateUsername(ok), ok)
	}
	for _, bad := range []string{"", "two words", "tab\there", "a@b", "all", "All"} {
		err := ValidateUsername(bad)
		if assert.Error(t, err, bad) {
			assert.Equal(t, "username", err.(*ValidationError).Field)
		}
	}
}

func TestValidateObjectID(t *testing.T) {
	oid, err := ValidateObjectID("_id", "65f0c0ffee0000000000abcd")
	assert.NoError(t, err)
	assert.Equal(t, "65f0c0ffee0000000000abcd", oid.Hex())

	_, err = ValidateObjectID("last_activity_id", "nope")
	if assert.Error(t, err) {
		assert.Equal(t, "last_activity_id = nope is not a valid id", err.Error())
	}
}
