package types

// ErrorCode enumerates the modeled EC2 error codes.
type ErrorCode string

const (
	ErrCodeInvalidParameterValue ErrorCode = "InvalidParameterValue"
	ErrCodeRequestLimitExceeded  ErrorCode = "RequestLimitExceeded"
	ErrCodeUnauthorizedOperation ErrorCode = "UnauthorizedOperation"
	ErrCodeResourceNotFound      ErrorCode = "ResourceNotFound"
)
