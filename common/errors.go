package common

import "errors"

var (
	// ErrInvalidAddress is returned for input that is not a hex account
	// address of at most 32 bytes.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrEncoding is returned when a seed is not valid UTF-8.
	ErrEncoding = errors.New("seed is not valid utf-8")
)
