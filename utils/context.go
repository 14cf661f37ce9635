package utils

// ContextKey is the type used for request-scoped context values
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	IPAddressKey  ContextKey = "ip_address"
	UserAgentKey  ContextKey = "user_agent"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)
