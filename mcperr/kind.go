package mcperr

// Kind is an error classification tag. Its string value is the wire code.
type Kind string

const (
	KindUnknown        Kind = "UNKNOWN_ERROR"
	KindInvalidRequest Kind = "INVALID_REQUEST"
	KindMissingParam   Kind = "MISSING_PARAMETER"
	KindInvalidParam   Kind = "INVALID_PARAMETER"

	KindAuthFailed       Kind = "AUTH_FAILED"
	KindAuthMissing      Kind = "AUTH_MISSING"
	KindAuthExpired      Kind = "AUTH_EXPIRED"
	KindPermissionDenied Kind = "PERMISSION_DENIED"

	KindAPIError       Kind = "API_ERROR"
	KindAPITimeout     Kind = "API_TIMEOUT"
	KindAPIRateLimited Kind = "API_RATE_LIMITED"
	KindAPIUnavailable Kind = "API_UNAVAILABLE"

	KindToolNotFound        Kind = "TOOL_NOT_FOUND"
	KindToolExecutionFailed Kind = "TOOL_EXECUTION_FAILED"
	KindToolTimeout         Kind = "TOOL_TIMEOUT"

	KindResourceNotFound     Kind = "RESOURCE_NOT_FOUND"
	KindResourceAccessDenied Kind = "RESOURCE_ACCESS_DENIED"

	KindConfigMissing Kind = "CONFIG_MISSING"
	KindConfigInvalid Kind = "CONFIG_INVALID"
)

var allKinds = []Kind{
	KindUnknown, KindInvalidRequest, KindMissingParam, KindInvalidParam,
	KindAuthFailed, KindAuthMissing, KindAuthExpired, KindPermissionDenied,
	KindAPIError, KindAPITimeout, KindAPIRateLimited, KindAPIUnavailable,
	KindToolNotFound, KindToolExecutionFailed, KindToolTimeout,
	KindResourceNotFound, KindResourceAccessDenied,
	KindConfigMissing, KindConfigInvalid,
}

// Kinds returns every defined kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	for _, d := range allKinds {
		if d == k {
			return true
		}
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Kind groups used by the default Handler rules.
var (
	authKinds       = []Kind{KindAuthFailed, KindAuthMissing, KindAuthExpired, KindPermissionDenied}
	timeoutKinds    = []Kind{KindToolTimeout, KindAPITimeout}
	apiKinds        = []Kind{KindAPIError, KindAPIRateLimited, KindAPIUnavailable}
	validationKinds = []Kind{KindInvalidRequest, KindMissingParam, KindInvalidParam}
	toolKinds       = []Kind{KindToolNotFound, KindToolExecutionFailed, KindResourceNotFound, KindResourceAccessDenied}
	configKinds     = []Kind{KindConfigMissing, KindConfigInvalid}
)
