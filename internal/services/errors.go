package services

import (
	"github.com/AnshRaj112/watchfeed-backend/pkg/utils"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error taxonomy. Callers classify with errors.Is; the wrapped message is the
// client-facing description.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUpstream           = errors.New("upstream failure")
	ErrCacheInconsistency = errors.New("cache inconsistency")
	ErrValidation         = errors.New("validation failure")
	ErrForbidden          = errors.New("forbidden")
)

func notFoundf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

func conflictf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConflict, format, args...)
}

func validationf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

// ParseObjectID validates a client-supplied document id.
func ParseObjectID(hex string) (primitive.ObjectID, error) {
	oid, err := utils.ValidateObjectID("_id", hex)
	if err != nil {
		return primitive.NilObjectID, validationf("%s", err.Error())
	}
	return oid, nil
}

// parseCursor treats an empty cursor as the first page.
func parseCursor(field, hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	oid, err := utils.ValidateObjectID(field, hex)
	if err != nil {
		return nil, validationf("%s", err.Error())
	}
	return &oid, nil
}
