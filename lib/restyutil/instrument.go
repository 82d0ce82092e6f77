package restyutil

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type InstrumentOutput interface {
	Write(name string, contents string)
}

// InstrumentClient writes every exchange the client makes to output. Each
// exchange is named "<seq>-<host>_<path>" so the dump of a given page is
// easy to find. A nil output leaves the client untouched.
func InstrumentClient(client *resty.Client, output InstrumentOutput) {
	if output == nil {
		return
	}
	d := &dumper{output: output}
	client.OnAfterResponse(d.onAfterResponse)
	client.OnError(d.onError)
}

type dumper struct {
	output InstrumentOutput
	seq    atomic.Uint64
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9.]+`)

const maxSlugLen = 80

// slug is the host and path of rawUrl usable as a file name.
func slug(rawUrl string) string {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return "request"
	}
	s := strings.Trim(unsafeChars.ReplaceAllString(u.Host+u.Path, "_"), "_")
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}
	if s == "" {
		return "request"
	}
	return s
}

func (d *dumper) name(req *resty.Request) string {
	return fmt.Sprintf("%04d-%s", d.seq.Add(1), slug(req.URL))
}

func (d *dumper) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	name := d.name(res.Request)
	d.output.Write(name, formatExchange(res))
	slog.DebugContext(
		res.Request.Context(), "dumped http exchange",
		"url", res.Request.URL,
		"status", res.StatusCode(),
		"dump", name,
	)
	return nil
}

func (d *dumper) onError(req *resty.Request, err error) {
	name := d.name(req)
	d.output.Write(name, formatFailure(req, err))
	slog.DebugContext(req.Context(), "dumped failed http request", "url", req.URL, "dump", name)
}
