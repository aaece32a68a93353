package types

import "fmt"

// NoSuchBucket is returned when the bucket does not exist.
type NoSuchBucket struct {
	Message           *string
	ErrorCodeOverride *string
}

func (e *NoSuchBucket) Error() string { return fmt.Sprintf("%s: %s", e.ErrorCode(), e.ErrorMessage()) }

func (e *NoSuchBucket) ErrorMessage() string {
	if e.Message == nil {
		return ""
	}
	return *e.Message
}

func (e *NoSuchBucket) ErrorCode() string {
	if e.ErrorCodeOverride == nil {
		return "NoSuchBucket"
	}
	return *e.ErrorCodeOverride
}

// NoSuchKey is returned when the object does not exist.
type NoSuchKey struct {
	Message *string
}

func (e *NoSuchKey) Error() string { return "NoSuchKey" }

func (e *NoSuchKey) ErrorCode() string { return "NoSuchKey" }

// BucketAlreadyOwnedByYou is returned on a repeated create.
type BucketAlreadyOwnedByYou struct{}

func (e *BucketAlreadyOwnedByYou) Error() string { return "bucket already owned" }

func (e *BucketAlreadyOwnedByYou) ErrorCode() string { return "BucketAlreadyOwnedByYou" }

type AccessDenied struct{}

func (e *AccessDenied) Error() string { return "access denied" }

func (e *AccessDenied) ErrorCode() string {
	code := e.lookup()
	return code
}

func (e *AccessDenied) lookup() string { return "AccessDenied" }
