// Package mderr builds the store's status errors so call sites read the way
// the original's absl::XError(...) call sites do, one constructor per code.
package mderr

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func InvalidArgument(format string, args ...any) error {
	return status.Error(codes.InvalidArgument, fmt.Sprintf(format, args...))
}

func FailedPrecondition(format string, args ...any) error {
	return status.Error(codes.FailedPrecondition, fmt.Sprintf(format, args...))
}

func AlreadyExists(format string, args ...any) error {
	return status.Error(codes.AlreadyExists, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return status.Error(codes.NotFound, fmt.Sprintf(format, args...))
}

func Unimplemented(format string, args ...any) error {
	return status.Error(codes.Unimplemented, fmt.Sprintf(format, args...))
}

func Aborted(format string, args ...any) error {
	return status.Error(codes.Aborted, fmt.Sprintf(format, args...))
}

func Cancelled(format string, args ...any) error {
	return status.Error(codes.Canceled, fmt.Sprintf(format, args...))
}

func Internal(format string, args ...any) error {
	return status.Error(codes.Internal, fmt.Sprintf(format, args...))
}

// Wrap re-tags err (typically from the MAO/driver layer) as Internal unless
// it already carries a status code, in which case the original code and
// message are preserved.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		if Code(err) != codes.Unknown {
			return err
		}
	}
	return status.Error(codes.Internal, err.Error())
}

// Code extracts the grpc status code carried by err, or codes.Unknown if
// err was not constructed by this package.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	st, ok := status.FromError(err)
	if !ok {
		return codes.Unknown
	}
	return st.Code()
}

// Is reports whether err carries the given code.
func Is(err error, code codes.Code) bool {
	return Code(err) == code
}
