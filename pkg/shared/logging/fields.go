// Package logging provides a fluent builder for structured logrus.Fields
// so every component logs the same field names for the same concept.
package logging

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Fields is a structured field set under construction. Each setter
// returns the receiver so calls chain. Resource (for an empty name),
// Error (for a nil error) and UserID (for an empty id) skip the field
// rather than record a blank one; the other setters record their
// argument as given.
type Fields map[string]interface{}

// NewFields returns an empty Fields builder.
func NewFields() Fields {
	return Fields{}
}

// Component records which subsystem emitted the log line.
func (f Fields) Component(name string) Fields {
	f["component"] = name
	return f
}

// Operation records the action being performed.
func (f Fields) Operation(op string) Fields {
	f["operation"] = op
	return f
}

// Resource records the kind and, if known, the identity of the thing
// the operation acted on.
func (f Fields) Resource(resourceType, resourceName string) Fields {
	f["resource_type"] = resourceType
	if resourceName != "" {
		f["resource_name"] = resourceName
	}
	return f
}

// Duration records an elapsed time in milliseconds.
func (f Fields) Duration(d time.Duration) Fields {
	f["duration_ms"] = d.Milliseconds()
	return f
}

// Error records err's message, or does nothing for a nil error.
func (f Fields) Error(err error) Fields {
	if err != nil {
		f["error"] = err.Error()
	}
	return f
}

// UserID records the caller's identity, or does nothing if blank.
func (f Fields) UserID(id string) Fields {
	if id != "" {
		f["user_id"] = id
	}
	return f
}

// RequestID records a per-call identifier.
func (f Fields) RequestID(id string) Fields {
	f["request_id"] = id
	return f
}

// TraceID records a cross-call trace identifier.
func (f Fields) TraceID(id string) Fields {
	f["trace_id"] = id
	return f
}

// StatusCode records an HTTP-shaped status code.
func (f Fields) StatusCode(code int) Fields {
	f["status_code"] = code
	return f
}

// Method records an HTTP method.
func (f Fields) Method(method string) Fields {
	f["method"] = method
	return f
}

// URL records a request URL.
func (f Fields) URL(url string) Fields {
	f["url"] = url
	return f
}

// Count records an integer count.
func (f Fields) Count(n int) Fields {
	f["count"] = n
	return f
}

// Size records a byte size.
func (f Fields) Size(bytes int64) Fields {
	f["size_bytes"] = bytes
	return f
}

// Version records a version string.
func (f Fields) Version(v string) Fields {
	f["version"] = v
	return f
}

// Custom records an arbitrary key/value pair not covered by a named setter.
func (f Fields) Custom(key string, value interface{}) Fields {
	f[key] = value
	return f
}

// ToLogrus converts Fields to logrus.Fields for use with a *logrus.Entry.
func (f Fields) ToLogrus() logrus.Fields {
	return logrus.Fields(f)
}

// ProviderFields is the standard field set for a search-provider call.
func ProviderFields(operation, provider string) Fields {
	return NewFields().Component("provider").Operation(operation).Custom("provider", provider)
}

// QueryFields is the standard field set for a query-analysis operation.
func QueryFields(operation, queryType string) Fields {
	return NewFields().Component("query").Operation(operation).Custom("query_type", queryType)
}

// HTTPFields is the standard field set for an HTTP request/response.
func HTTPFields(method, url string, statusCode int) Fields {
	return NewFields().Component("http").Method(method).URL(url).StatusCode(statusCode)
}

// MetricsFields is the standard field set for a recorded metric sample.
func MetricsFields(operation, metricName string, value float64) Fields {
	return NewFields().Component("metrics").Operation(operation).Custom("metric_name", metricName).Custom("value", value)
}

// SecurityFields is the standard field set for an auth-relevant event.
func SecurityFields(operation, subject string) Fields {
	return NewFields().Component("security").Operation(operation).Custom("subject", subject)
}

// PerformanceFields is the standard field set for a timed operation outcome.
func PerformanceFields(operation string, duration time.Duration, success bool) Fields {
	return NewFields().Component("performance").Operation(operation).Duration(duration).Custom("success", success)
}
