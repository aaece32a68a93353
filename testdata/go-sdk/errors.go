package cloudsdk

// APIError is implemented by every modeled service error.
type APIError interface {
	error
	ErrorCode() string
	ErrorMessage() string
}

// Version of the SDK.
const Version = "1.30.0"
