// Package fetch is the HTTP client every jurisdiction scraper goes
// through.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"legiscrape/lib/restyutil"
	"legiscrape/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("legiscrape.lib.fetch")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Config struct {
	TimeoutSec       int    `json:"timeout_sec" yaml:"timeout_sec"`
	Retries          int    `json:"retries" yaml:"retries"`
	UserAgent        string `json:"user_agent" yaml:"user_agent"`
	CloudflareBypass bool   `json:"cloudflare_bypass" yaml:"cloudflare_bypass"`
}

// StatusError is returned for any response outside 2xx.
type StatusError struct {
	Url    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.Url, e.Status)
}

func IsNotFound(err error) bool {
	var status *StatusError
	return errors.As(err, &status) && (status.Status == http.StatusNotFound || status.Status == http.StatusGone)
}

// IsUnavailable reports whether err means the resource could not be
// reached this time: a missing page, a server error or a timeout.
func IsUnavailable(err error) bool {
	var status *StatusError
	if errors.As(err, &status) {
		return status.Status == http.StatusNotFound ||
			status.Status == http.StatusGone ||
			status.Status >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type Client struct {
	Http *resty.Client
}

// NewClient builds a client from cfg, dump may be nil and otherwise
// receives every request/response pair.
func NewClient(cfg Config, dump restyutil.InstrumentOutput) (*Client, error) {
	client := resty.New()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	if cfg.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	timeout := time.Second * 30
	if cfg.TimeoutSec > 0 {
		timeout = time.Second * time.Duration(cfg.TimeoutSec)
	}
	client.SetTimeout(timeout)

	client.SetRetryCount(cfg.Retries)
	client.SetRetryWaitTime(time.Millisecond * 500)
	client.SetRetryMaxWaitTime(time.Second * 5)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return !errors.Is(err, context.Canceled)
		}
		return res.StatusCode() >= 500 || res.StatusCode() == http.StatusTooManyRequests
	})

	telemetry.InstrumentResty(client, "legiscrape.fetch.http")
	restyutil.InstrumentClient(client, dump)

	return &Client{Http: client}, nil
}

// Request is the options of a single GET.
type Request struct {
	Query  map[string]string
	Header map[string]string
}

func (c *Client) get(ctx context.Context, rawUrl string, req Request) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "fetch:get", trace.WithAttributes(attribute.String("url", rawUrl)))
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(req.Query).
		SetHeaders(req.Header).
		Get(rawUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("GET %s: %w", rawUrl, err)
	}
	if res.IsError() || res.StatusCode() >= 300 {
		span.SetStatus(codes.Error, res.Status())
		return nil, &StatusError{Url: rawUrl, Status: res.StatusCode()}
	}
	return res, nil
}

// Bytes fetches the raw body, for CSV and PDF documents.
func (c *Client) Bytes(ctx context.Context, rawUrl string, req Request) ([]byte, error) {
	res, err := c.get(ctx, rawUrl, req)
	if err != nil {
		return nil, err
	}
	return res.Body(), nil
}

// Document fetches and parses an HTML page. The document's Url is the
// final url after redirects, so relative links resolve against it.
func (c *Client) Document(ctx context.Context, rawUrl string) (*goquery.Document, error) {
	res, err := c.get(ctx, rawUrl, Request{})
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawUrl, err)
	}
	doc.Url, err = url.Parse(rawUrl)
	if err != nil {
		return nil, err
	}
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		doc.Url = res.RawResponse.Request.URL
	}
	return doc, nil
}

// JSON fetches rawUrl and decodes the body into out.
func (c *Client) JSON(ctx context.Context, rawUrl string, req Request, out any) error {
	res, err := c.get(ctx, rawUrl, req)
	if err != nil {
		return err
	}
	err = json.Unmarshal(res.Body(), out)
	if err != nil {
		return fmt.Errorf("decode %s: %w", rawUrl, err)
	}
	return nil
}
