package utils

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinUsernameLength = 1
	MaxUsernameLength = 64

	// ReservedMention addresses every group member and cannot be a username.
	ReservedMention = "all"
)

var (
	// a username must survive the mention grammar: no whitespace, no '@'
	usernameRegex = regexp.MustCompile(`^[^\s@]+$`)
)

// ValidateUsername validates username format
// Rules: 1-64 characters, no whitespace, no '@', not the reserved mention
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return &ValidationError{Field: "username", Message: "Username is required"}
	}

	if len(username) > MaxUsernameLength {
		return &ValidationError{Field: "username", Message: "Username must be at most 64 characters"}
	}

	if !usernameRegex.MatchString(username) {
		return &ValidationError{Field: "username", Message: "Username cannot contain whitespace or '@'"}
	}

	if strings.EqualFold(username, ReservedMention) {
		return &ValidationError{Field: "username", Message: "Username 'all' is reserved"}
	}

	return nil
}

// ValidateObjectID parses a hex document id
func ValidateObjectID(field, hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, &ValidationError{Field: field, Message: field + " = " + hex + " is not a valid id"}
	}
	return oid, nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
