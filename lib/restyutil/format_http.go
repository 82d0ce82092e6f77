package restyutil

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
)

// header values never written to a dump
var redactedHeaders = map[string]bool{
	"Authorization": true,
	"Cookie":        true,
	"Set-Cookie":    true,
	"X-Api-Key":     true,
}

// writeHeaders writes headers sorted by name so the dumps of two runs
// diff cleanly.
func writeHeaders(out *strings.Builder, headers http.Header) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range headers[name] {
			if redactedHeaders[http.CanonicalHeaderKey(name)] {
				value = "<redacted>"
			}
			fmt.Fprintf(out, "%s: %s\n", name, value)
		}
	}
}

func writeRequest(out *strings.Builder, req *resty.Request) {
	fmt.Fprintf(out, "---- REQUEST ----\n\n%s %s\n", req.Method, req.URL)
	if len(req.QueryParam) > 0 {
		fmt.Fprintf(out, "query: %s\n", req.QueryParam.Encode())
	}
	out.WriteString("\n")
	writeHeaders(out, req.Header)
}

func formatExchange(res *resty.Response) string {
	var out strings.Builder
	writeRequest(&out, res.Request)

	finalUrl := res.Request.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalUrl = res.RawResponse.Request.URL.String()
	}
	fmt.Fprintf(&out, "\n---- RESPONSE ----\n\n%d %s\n", res.StatusCode(), finalUrl)
	fmt.Fprintf(&out, "attempt %d, took %s\n\n", res.Request.Attempt, res.Time())
	writeHeaders(&out, res.Header())
	out.WriteString("\n")
	out.Write(res.Body())
	return out.String()
}

func formatFailure(req *resty.Request, err error) string {
	var out strings.Builder
	writeRequest(&out, req)
	fmt.Fprintf(&out, "\n---- ERROR ----\n\nattempt %d: %s\n", req.Attempt, err)
	return out.String()
}
