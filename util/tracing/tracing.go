package tracing

// Context carries request-scoped identifiers used for tracing a request
// through the handler and helper layers.
type Context struct {
	RequestID     string `json:"request_id"`
	RequestSource string `json:"request_source"`
}
