package observability

import (
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// TracingMiddleware wraps the router in an X-Ray segment per request.
// Segments are named after the service since API Gateway already
// records the route.
func TracingMiddleware(serviceName string) func(http.Handler) http.Handler {
	namer := xray.NewFixedSegmentNamer(serviceName)
	return func(next http.Handler) http.Handler {
		return xray.Handler(namer, next)
	}
}
