package server

import (
	"errors"
	"fmt"
)

// Error membawa pesan untuk client, error asal, dan code (salah satu sentinel di bawah)
// yang dipakai layer rest untuk memilih http status.
type Error struct {
	orig error
	msg  string
	code error
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
		code: code,
	}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func (e *Error) Code() error {
	return e.code
}

// CodeOf code dari err, ErrInternalServerError kalau err bukan *Error.
func CodeOf(err error) error {
	var serr *Error
	if !errors.As(err, &serr) || serr.code == nil {
		return ErrInternalServerError
	}
	return serr.code
}

var (
	ErrInternalServerError = errors.New("internal server error")
	// route tidak ditemukan
	ErrNotFound = errors.New("route not found")
	// koordinat atau body request tidak valid
	ErrBadParamInput = errors.New("invalid route query")
)
