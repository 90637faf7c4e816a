// Package storagetest runs an in-memory S3 endpoint for tests.
package storagetest

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Object is a stored upload.
type Object struct {
	Body         []byte
	ContentType  string
	CacheControl string
}

// Bucket is a path-style S3 endpoint that keeps objects in memory.
type Bucket struct {
	srv *httptest.Server

	mu      sync.Mutex
	objects map[string]Object
	methods []string
}

// NewBucket starts a fake endpoint that is closed with the test.
func NewBucket(t *testing.T) *Bucket {
	t.Helper()
	b := &Bucket{objects: map[string]Object{}}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

// Endpoint is the host:port to hand to the S3 client.
func (b *Bucket) Endpoint() string {
	u, _ := url.Parse(b.srv.URL)
	return u.Host
}

// Object returns what was stored at path, "/<bucket>/<key>".
func (b *Bucket) Object(path string) (Object, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.objects[path]
	return o, ok
}

// Put stores an object directly, bypassing the client.
func (b *Bucket) Put(path string, o Object) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[path] = o
}

// Methods lists the request methods seen so far.
func (b *Bucket) Methods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.methods...)
}

func (b *Bucket) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.methods = append(b.methods, r.Method)
	b.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, err := readPayload(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.Put(r.URL.Path, Object{
			Body:         body,
			ContentType:  r.Header.Get("Content-Type"),
			CacheControl: r.Header.Get("Cache-Control"),
		})
		w.Header().Set("ETag", etag(body))
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		o, ok := b.Object(r.URL.Path)
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message><Key>%s</Key></Error>`, r.URL.Path)
			return
		}
		w.Header().Set("ETag", etag(o.Body))
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", o.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(o.Body)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(o.Body)
		}
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func etag(body []byte) string {
	sum := md5.Sum(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// readPayload returns the object bytes, undoing aws-chunked framing when the
// client used a streaming signature.
func readPayload(r *http.Request) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") {
		return io.ReadAll(r.Body)
	}
	var out bytes.Buffer
	br := bufio.NewReader(r.Body)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("chunk header: %w", err)
		}
		sizeHex, _, _ := strings.Cut(strings.TrimRight(line, "\r\n"), ";")
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("chunk size %q: %w", sizeHex, err)
		}
		if size == 0 {
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, br, size); err != nil {
			return nil, fmt.Errorf("chunk body: %w", err)
		}
		if _, err := br.Discard(2); err != nil {
			return nil, fmt.Errorf("chunk trailer: %w", err)
		}
	}
}
