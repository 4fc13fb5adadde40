// Package status defines the flat result taxonomy shared by every component of the
// library. Each failure carries a Code so that bindings can translate it into a
// numeric result, where 0 always means success.
package status

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is a result code. Success is 0, every failure kind is nonzero.
type Code int

const (
	Success Code = iota
	PrivateKeyNotFitPublic
	InsufficientNumberOfPublicKeys
	PrivateKeyPositionOutOfRange
	PrivateKeyNotFoundAmongPublicKeys
	UnexpectedCurveType
	UnexpectedHashType
	IncorrectNumberOfSignatures
	InvalidKeyImage
	IncorrectChecksum
	OIDHasherNotFound
	OIDCurveNotFound
	UnsupportedCurveHashCombination
	PointWasNotFound
	DecodePEMFailure
	UnexpectedRestOfSignature
	MarshalFailed
	EncodePEMFailed
	InvalidPointCoordinates
	NilPointCoordinates
	ParsePrivateKeyFailure
	UnmarshalFailed
	MarshalPublicKeyFailed
	ParsePublicKeyFailed
	InvalidSignature
	DuplicatePublicKeys
	CreateKeyFailed
)

var codeNames = map[Code]string{
	Success:                           "Success",
	PrivateKeyNotFitPublic:            "PrivateKeyNotFitPublic",
	InsufficientNumberOfPublicKeys:    "InsufficientNumberOfPublicKeys",
	PrivateKeyPositionOutOfRange:      "PrivateKeyPositionOutOfRange",
	PrivateKeyNotFoundAmongPublicKeys: "PrivateKeyNotFoundAmongPublicKeys",
	UnexpectedCurveType:               "UnexpectedCurveType",
	UnexpectedHashType:                "UnexpectedHashType",
	IncorrectNumberOfSignatures:       "IncorrectNumberOfSignatures",
	InvalidKeyImage:                   "InvalidKeyImage",
	IncorrectChecksum:                 "IncorrectChecksum",
	OIDHasherNotFound:                 "OIDHasherNotFound",
	OIDCurveNotFound:                  "OIDCurveNotFound",
	UnsupportedCurveHashCombination:   "UnsupportedCurveHashCombination",
	PointWasNotFound:                  "PointWasNotFound",
	DecodePEMFailure:                  "DecodePEMFailure",
	UnexpectedRestOfSignature:         "UnexpectedRestOfSignature",
	MarshalFailed:                     "MarshalFailed",
	EncodePEMFailed:                   "EncodePEMFailed",
	InvalidPointCoordinates:           "InvalidPointCoordinates",
	NilPointCoordinates:               "NilPointCoordinates",
	ParsePrivateKeyFailure:            "ParsePrivateKeyFailure",
	UnmarshalFailed:                   "UnmarshalFailed",
	MarshalPublicKeyFailed:            "MarshalPublicKeyFailed",
	ParsePublicKeyFailed:              "ParsePublicKeyFailed",
	InvalidSignature:                  "InvalidSignature",
	DuplicatePublicKeys:               "DuplicatePublicKeys",
	CreateKeyFailed:                   "CreateKeyFailed",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is an error tagged with a result Code. It optionally wraps a cause.
type Error struct {
	code  Code
	msg   string
	cause error
}

// New returns an error with the given code. Package-level sentinels are built with New
// so that callers can match them with errors.Is.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Wrap tags err with code. A nil err yields nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, msg: msg, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

// Code returns the result code of e.
func (e *Error) Code() Code {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf returns the code of the outermost *Error in err's chain, Success for a nil
// error and MarshalFailed for errors that carry no code.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return MarshalFailed
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
