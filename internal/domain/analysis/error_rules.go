package analysis

import "github.com/sdkprobe/sdkprobe/internal/domain"

// ErrorRule assigns error codes matching Pattern to Category.
type ErrorRule struct {
	Category domain.Category
	Pattern  domain.ErrorPattern
}

// errorRules is the fixed priority list; the first matching rule wins.
// Specific state rules precede the broad validation prefixes.
var errorRules = []ErrorRule{
	{domain.CategoryNotFound, domain.Exact("NotFound")},
	{domain.CategoryNotFound, domain.Prefix("NoSuch")},
	{domain.CategoryNotFound, domain.Contains("NotFound")},
	{domain.CategoryNotFound, domain.Contains("NotExist")},

	{domain.CategoryAlreadyExists, domain.Exact("AlreadyExists")},
	{domain.CategoryAlreadyExists, domain.Contains("AlreadyExist")},
	{domain.CategoryAlreadyExists, domain.Contains("Already")},
	{domain.CategoryAlreadyExists, domain.Prefix("ResourceExists")},
	{domain.CategoryAlreadyExists, domain.Contains("InUse")},
	{domain.CategoryAlreadyExists, domain.Exact("Conflict")},
	{domain.CategoryAlreadyExists, domain.Contains("Conflict")},
	{domain.CategoryAlreadyExists, domain.Contains("Duplicate")},

	{domain.CategoryPermissionDenied, domain.Exact("AccessDenied")},
	{domain.CategoryPermissionDenied, domain.Exact("Forbidden")},
	{domain.CategoryPermissionDenied, domain.Exact("PermissionDenied")},
	{domain.CategoryPermissionDenied, domain.Exact("Unauthorized")},
	{domain.CategoryPermissionDenied, domain.Contains("AccessDenied")},
	{domain.CategoryPermissionDenied, domain.Contains("Unauthorized")},
	{domain.CategoryPermissionDenied, domain.Contains("Forbidden")},
	{domain.CategoryPermissionDenied, domain.Contains("PermissionDenied")},
	{domain.CategoryPermissionDenied, domain.Contains("NotAuthorized")},
	{domain.CategoryPermissionDenied, domain.Contains("Unauthenticated")},
	{domain.CategoryPermissionDenied, domain.Contains("Signature")},
	{domain.CategoryPermissionDenied, domain.Contains("ExpiredToken")},

	{domain.CategoryFailedPrecondition, domain.Contains("InvalidState")},

	{domain.CategoryValidation, domain.Prefix("Invalid")},
	{domain.CategoryValidation, domain.Prefix("Malformed")},
	{domain.CategoryValidation, domain.Contains("Validation")},
	{domain.CategoryValidation, domain.Prefix("Missing")},
	{domain.CategoryValidation, domain.Contains("BadRequest")},
	{domain.CategoryValidation, domain.Contains("TooLarge")},

	{domain.CategoryFailedPrecondition, domain.Exact("PreconditionFailed")},
	{domain.CategoryFailedPrecondition, domain.Contains("Precondition")},
	{domain.CategoryFailedPrecondition, domain.Contains("ConditionNotMet")},
	{domain.CategoryFailedPrecondition, domain.Contains("ConditionalCheckFailed")},
	{domain.CategoryFailedPrecondition, domain.Contains("IncorrectState")},

	{domain.CategoryResourceExhausted, domain.Exact("LimitExceeded")},
	{domain.CategoryResourceExhausted, domain.Contains("Limit")},
	{domain.CategoryResourceExhausted, domain.Contains("Quota")},
	{domain.CategoryResourceExhausted, domain.Prefix("TooMany")},
	{domain.CategoryResourceExhausted, domain.Contains("Throttl")},
	{domain.CategoryResourceExhausted, domain.Exact("SlowDown")},
	{domain.CategoryResourceExhausted, domain.Contains("Exhausted")},

	{domain.CategoryUnavailable, domain.Exact("ServiceUnavailable")},
	{domain.CategoryUnavailable, domain.Exact("Unavailable")},
	{domain.CategoryUnavailable, domain.Contains("Unavailable")},

	{domain.CategoryDeadlineExceeded, domain.Exact("Timeout")},
	{domain.CategoryDeadlineExceeded, domain.Exact("DeadlineExceeded")},
	{domain.CategoryDeadlineExceeded, domain.Contains("Timeout")},
	{domain.CategoryDeadlineExceeded, domain.Contains("TimedOut")},
	{domain.CategoryDeadlineExceeded, domain.Contains("DeadlineExceeded")},

	{domain.CategoryUnimplemented, domain.Exact("Unimplemented")},
	{domain.CategoryUnimplemented, domain.Exact("NotImplemented")},
	{domain.CategoryUnimplemented, domain.Contains("NotImplemented")},
	{domain.CategoryUnimplemented, domain.Contains("Unsupported")},
	{domain.CategoryUnimplemented, domain.Contains("NotSupported")},
}

// ErrorRules returns a copy of the rule table in priority order.
func ErrorRules() []ErrorRule {
	return append([]ErrorRule(nil), errorRules...)
}

// MatchRule returns the first rule matching code.
func MatchRule(code string) (ErrorRule, bool) {
	for _, r := range errorRules {
		if r.Pattern.Matches(code) {
			return r, true
		}
	}
	return ErrorRule{}, false
}
