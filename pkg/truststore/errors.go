package truststore

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is returned for trust store types other than PEM, PKCS12 and JKS.
	ErrUnsupportedType = errors.New("truststore: unsupported type")

	// ErrNoCertificates is returned when a trust store holds no certificates.
	ErrNoCertificates = errors.New("truststore: no certificates found")

	// ErrEmptyPath is returned when no trust store path is given.
	ErrEmptyPath = errors.New("truststore: path must not be empty")
)

// ErrLoad wraps a failure to read or decode the trust store at Path.
type ErrLoad struct {
	Path string
	Err  error
}

func (e ErrLoad) Error() string {
	return fmt.Sprintf("truststore: load %s: %v", e.Path, e.Err)
}

func (e ErrLoad) Unwrap() error {
	return e.Err
}
