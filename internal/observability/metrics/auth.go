package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/smartbin/portal/internal/observability/errors"
	"github.com/smartbin/portal/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// AuthMetric captures one session facade operation for metric emission.
type AuthMetric struct {
	Operation string
	Mode      string
	Result    string
	Duration  time.Duration
	Err       error
}

// EmitAuthOperation emits standardised auth operation metrics.
func EmitAuthOperation(sink statsd.Sink, in AuthMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation": in.Operation,
		"result":    in.Result,
	}
	if in.Mode != "" {
		tags["mode"] = in.Mode
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.operation", 1, tags)

	if in.Duration > 0 {
		sink.Timing("auth.duration", in.Duration, CloneTags(tags))
	}
}

// RequestMetric describes one outbound API call.
type RequestMetric struct {
	Method   string
	Path     string
	Status   int
	Kind     string
	Attempts int
	Duration time.Duration
}

// EmitAPIRequest emits outbound API client metrics.
func EmitAPIRequest(sink statsd.Sink, in RequestMetric) {
	if sink == nil {
		return
	}

	result := ResultSuccess
	if in.Kind != "" {
		result = ResultError
	}
	tags := map[string]string{
		"method": in.Method,
		"path":   in.Path,
		"result": result,
	}
	if in.Status > 0 {
		tags["status"] = strconv.Itoa(in.Status)
	}
	if in.Kind != "" {
		tags["error_kind"] = in.Kind
	}

	sink.Count("apiclient.request", 1, tags)
	if in.Attempts > 1 {
		sink.Count("apiclient.retry", int64(in.Attempts-1), CloneTags(tags))
	}
	if in.Duration > 0 {
		sink.Timing("apiclient.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
