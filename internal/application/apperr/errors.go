// Package apperr defines the closed set of error kinds that cross the
// application boundary. Transport layers map a Kind to a status code and
// render Code and Message; the wrapped cause is for logs only.
package apperr

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindStorage Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindCrypto
	KindExpired
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindCrypto:
		return "crypto"
	case KindExpired:
		return "expired"
	default:
		return "storage"
	}
}

// Stable machine-readable codes.
const (
	CodeRecipientNotFound = "RecipientNotFound"
	CodeRecipientHasNoKey = "RecipientHasNoKey"
	CodeInvalidExpiration = "InvalidExpiration"
	CodeEmptyFile         = "EmptyFile"
	CodeFileTooLarge      = "FileTooLarge"
	CodeInvalidPassword   = "InvalidPassword"
	CodeMalwareDetected   = "MalwareDetected"
	CodeInvalidInput      = "InvalidInput"
	CodeFileNotFound      = "FileNotFound"
	CodeUserNotFound      = "UserNotFound"
	CodeExpired           = "Expired"
	CodeAlreadyConsumed   = "AlreadyConsumed"
	CodeDecryptionFailed  = "DecryptionFailed"
	CodeKeyUnavailable    = "KeyUnavailable"
	CodeKeyExists         = "KeyAlreadyProvisioned"
	CodePublicKeyNotFound = "PublicKeyNotFound"
	CodeStorageFailure    = "StorageFailure"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Code, so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message, Fields: fields}
}

// Storage wraps a persistence failure. The cause never reaches a response body.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Code: CodeStorageFailure, Message: "storage failure", Err: fmt.Errorf("%s: %w", op, err)}
}

// Wrap attaches a cause to a copy of a sentinel.
func Wrap(sentinel *Error, err error) *Error {
	cp := *sentinel
	cp.Err = err
	return &cp
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

var (
	ErrRecipientNotFound = New(KindNotFound, CodeRecipientNotFound, "recipient user not found")
	ErrRecipientHasNoKey = New(KindValidation, CodeRecipientHasNoKey, "recipient has no public key")
	ErrInvalidExpiration = New(KindValidation, CodeInvalidExpiration, "expiration_date must be in the future")
	ErrEmptyFile         = New(KindValidation, CodeEmptyFile, "file is empty")
	ErrFileTooLarge      = New(KindValidation, CodeFileTooLarge, "file too large")
	ErrMalwareDetected   = New(KindValidation, CodeMalwareDetected, "file rejected by malware scan")
	ErrInvalidPassword   = New(KindAuthorization, CodeInvalidPassword, "invalid password")
	ErrFileNotFound      = New(KindNotFound, CodeFileNotFound, "file not found")
	ErrUserNotFound      = New(KindNotFound, CodeUserNotFound, "user not found")
	ErrExpired           = New(KindExpired, CodeExpired, "file has expired")
	ErrAlreadyConsumed   = New(KindExpired, CodeAlreadyConsumed, "file has already been retrieved")
	ErrDecryptionFailed  = New(KindCrypto, CodeDecryptionFailed, "access denied")
	ErrKeyUnavailable    = New(KindAuthorization, CodeKeyUnavailable, "access denied")
	ErrKeyExists         = New(KindValidation, CodeKeyExists, "key pair already provisioned")
	ErrPublicKeyNotFound = New(KindNotFound, CodePublicKeyNotFound, "public key not found")
)
