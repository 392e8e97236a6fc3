package mcperr

import "fmt"

// Validation reports an invalid parameter. parameter and expectedType are
// recorded in details when non-empty.
func Validation(message, parameter, expectedType string) *Error {
	e := &Error{Kind: KindInvalidParam, Message: message, Details: map[string]any{}, stack: callers()}
	if parameter != "" {
		e.Details["parameter"] = parameter
	}
	if expectedType != "" {
		e.Details["expected_type"] = expectedType
	}
	return e
}

// MissingParameter reports that a required parameter is absent.
func MissingParameter(name string) *Error {
	return &Error{
		Kind:    KindMissingParam,
		Message: fmt.Sprintf("Missing required parameter: %s", name),
		Details: map[string]any{"parameter": name},
		stack:   callers(),
	}
}

// InvalidParameter reports that a parameter does not have the expected type.
func InvalidParameter(name, expectedType string) *Error {
	return &Error{
		Kind:    KindInvalidParam,
		Message: fmt.Sprintf("Parameter '%s' must be of type %s", name, expectedType),
		Details: map[string]any{"parameter": name, "expected_type": expectedType},
		stack:   callers(),
	}
}

// Authentication reports a failed authentication.
func Authentication(message string) *Error {
	if message == "" {
		message = "Authentication failed"
	}
	return &Error{Kind: KindAuthFailed, Message: message, stack: callers()}
}

// API reports a failure returned by an upstream API. Zero values are left out
// of details.
func API(message string, statusCode int, responseBody, endpoint string) *Error {
	e := &Error{Kind: KindAPIError, Message: message, Details: map[string]any{}, stack: callers()}
	if statusCode != 0 {
		e.Details["status_code"] = statusCode
	}
	if responseBody != "" {
		e.Details["response_body"] = responseBody
	}
	if endpoint != "" {
		e.Details["endpoint"] = endpoint
	}
	switch statusCode {
	case 429:
		e.Kind = KindAPIRateLimited
	case 502, 503, 504:
		e.Kind = KindAPIUnavailable
	}
	return e
}

// Timeout reports an operation that ran out of time.
func Timeout(message string, seconds float64) *Error {
	if message == "" {
		message = "Operation timed out"
	}
	e := &Error{Kind: KindToolTimeout, Message: message, Details: map[string]any{}, stack: callers()}
	if seconds > 0 {
		e.Details["timeout_seconds"] = seconds
	}
	return e
}

// Tool reports a failed external tool or command. A negative exitCode is
// omitted.
func Tool(message, toolName string, exitCode int, stderr string) *Error {
	e := &Error{Kind: KindToolExecutionFailed, Message: message, Details: map[string]any{}, stack: callers()}
	if toolName != "" {
		e.Details["tool_name"] = toolName
	}
	if exitCode >= 0 {
		e.Details["exit_code"] = exitCode
	}
	if stderr != "" {
		e.Details["stderr"] = stderr
	}
	return e
}

// Configuration reports an invalid configuration value.
func Configuration(message, key string) *Error {
	e := &Error{Kind: KindConfigInvalid, Message: message, Details: map[string]any{}, stack: callers()}
	if key != "" {
		e.Details["config_key"] = key
	}
	return e
}

// ConfigMissing reports a required configuration key that has no value.
func ConfigMissing(key string) *Error {
	return &Error{
		Kind:    KindConfigMissing,
		Message: fmt.Sprintf("Required configuration '%s' not found", key),
		Details: map[string]any{"config_key": key},
		stack:   callers(),
	}
}

// ToolNotFound reports a call to an unregistered tool.
func ToolNotFound(name string) *Error {
	return &Error{
		Kind:    KindToolNotFound,
		Message: fmt.Sprintf("Tool '%s' not found", name),
		Details: map[string]any{"tool_name": name},
		stack:   callers(),
	}
}

// ResourceNotFound reports a read of a URI no resource matches.
func ResourceNotFound(uri string) *Error {
	return &Error{
		Kind:    KindResourceNotFound,
		Message: fmt.Sprintf("Resource '%s' not found", uri),
		Details: map[string]any{"uri": uri},
		stack:   callers(),
	}
}

// ExecutionFailed wraps an unclassified failure raised by a tool. The cause is
// kept for diagnostics and stays out of the message.
func ExecutionFailed(toolName string, cause error) *Error {
	return &Error{
		Kind:    KindToolExecutionFailed,
		Message: fmt.Sprintf("Tool '%s' execution failed", toolName),
		Details: map[string]any{"tool_name": toolName},
		Cause:   cause,
		stack:   callers(),
	}
}

// MissingAPIKey reports an absent credential for the named service.
func MissingAPIKey(service string) *Error {
	return &Error{Kind: KindAuthMissing, Message: fmt.Sprintf("%s API key not provided", service), stack: callers()}
}

// InvalidModelID reports an unknown model identifier.
func InvalidModelID(id string) *Error {
	return &Error{
		Kind:    KindInvalidParam,
		Message: fmt.Sprintf("Invalid model ID: %s", id),
		Details: map[string]any{"parameter": "model_id", "expected_type": "valid_model_identifier"},
		stack:   callers(),
	}
}

// CommandNotAllowed reports a command outside an allow list.
func CommandNotAllowed(command string) *Error {
	return &Error{
		Kind:    KindInvalidParam,
		Message: fmt.Sprintf("Command not allowed: %s", command),
		Details: map[string]any{"parameter": "command"},
		stack:   callers(),
	}
}

// FileNotFound reports a missing file argument.
func FileNotFound(path string) *Error {
	return &Error{
		Kind:    KindInvalidParam,
		Message: fmt.Sprintf("File not found: %s", path),
		Details: map[string]any{"parameter": "file_path"},
		stack:   callers(),
	}
}

// BuildFailed reports a failed build step.
func BuildFailed(exitCode int, stderr string) *Error {
	return &Error{
		Kind:    KindToolExecutionFailed,
		Message: "Build process failed",
		Details: map[string]any{"tool_name": "build", "exit_code": exitCode, "stderr": stderr},
		stack:   callers(),
	}
}
