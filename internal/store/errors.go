package store

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrDataValidation     = errors.New("data error")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// translate maps driver errors onto the store's sentinel errors.
// The original error stays in the chain.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se sqlite3.Error
	if !errors.As(err, &se) || se.Code != sqlite3.ErrConstraint {
		return err
	}
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return errors.Join(ErrDuplicate, err)
	case sqlite3.ErrConstraintForeignKey:
		return errors.Join(ErrInvalidReference, err)
	case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
		return errors.Join(ErrDataValidation, err)
	}
	return err
}
