// Package source loads tree, patch and theme documents from local files,
// http(s) URLs and S3 objects.
//
//	f := source.New(source.WithS3(source.NewS3Client("eu-west-1", "")))
//	doc, err := f.Fetch(ctx, "s3://layouts/menu.yaml")
//	root, err := tree.Parse(doc.Name, doc.Data)
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/yui/internal/errors"
)

// DefaultMaxSize caps the size of a fetched document.
const DefaultMaxSize = 8 << 20

// Document is a fetched document. Name keeps the file name or key so the
// caller can pick a decoder by extension.
type Document struct {
	Location string
	Name     string
	Data     []byte
}

// S3API is the subset of the S3 client used by Fetcher.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher loads documents by location.
type Fetcher struct {
	http    *http.Client
	s3      S3API
	maxSize int64
	logger  *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client used for http(s) locations.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.http = c
	}
}

// WithS3 enables s3:// locations.
func WithS3(api S3API) Option {
	return func(f *Fetcher) {
		f.s3 = api
	}
}

// WithMaxSize sets the largest accepted document in bytes.
func WithMaxSize(n int64) Option {
	return func(f *Fetcher) {
		f.maxSize = n
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		http:    &http.Client{Timeout: 30 * time.Second},
		maxSize: DefaultMaxSize,
		logger:  slog.Default().With("component", "source"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetLogger sets the logger.
func (f *Fetcher) SetLogger(logger *slog.Logger) {
	f.logger = logger
}

// Fetch loads the document at loc: a file path, a file:// URL, an
// http(s) URL or an s3://bucket/key URI.
func (f *Fetcher) Fetch(ctx context.Context, loc string) (*Document, error) {
	scheme, rest, ok := strings.Cut(loc, "://")
	if !ok {
		return f.fetchFile(loc)
	}
	switch strings.ToLower(scheme) {
	case "file":
		return f.fetchFile(rest)
	case "http", "https":
		return f.fetchHTTP(ctx, loc)
	case "s3":
		return f.fetchS3(ctx, loc, rest)
	}
	return nil, errors.New(errors.CodeSourceUnsupported).WithPath(loc)
}

func (f *Fetcher) fetchFile(name string) (*Document, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fetchError(name, err)
	}
	defer file.Close()
	data, err := f.read(file)
	if err != nil {
		return nil, fetchError(name, err)
	}
	return &Document{Location: name, Name: name, Data: data}, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, loc string) (*Document, error) {
	u, err := url.Parse(loc)
	if err != nil {
		return nil, fetchError(loc, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fetchError(loc, err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fetchError(loc, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fetchError(loc, fmt.Errorf("unexpected status %s", resp.Status))
	}
	data, err := f.read(resp.Body)
	if err != nil {
		return nil, fetchError(loc, err)
	}
	f.logger.Debug("document fetched", "location", loc, "bytes", len(data))
	return &Document{Location: loc, Name: path.Base(u.Path), Data: data}, nil
}

func (f *Fetcher) fetchS3(ctx context.Context, loc, rest string) (*Document, error) {
	if f.s3 == nil {
		return nil, errors.New(errors.CodeSourceUnsupported).WithPath(loc).
			WithDetail("S3 access is not configured")
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return nil, errors.New(errors.CodeSourceUnsupported).WithPath(loc).
			WithDetail("expected s3://bucket/key")
	}
	out, err := f.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fetchError(loc, err)
	}
	defer out.Body.Close()
	data, err := f.read(out.Body)
	if err != nil {
		return nil, fetchError(loc, err)
	}
	f.logger.Debug("document fetched", "location", loc, "bytes", len(data))
	return &Document{Location: loc, Name: path.Base(key), Data: data}, nil
}

func (f *Fetcher) read(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("document exceeds %d bytes", f.maxSize)
	}
	return data, nil
}

func fetchError(loc string, err error) error {
	return errors.New(errors.CodeSourceFetch).WithPath(loc).Wrap(err).WithDetail(err.Error())
}
