package s3

import (
	"bufio"
	"bytes"
	"crypto/md5" //nolint:gosec // etag only
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FakeBucket is an http.RoundTripper that answers the path-style S3 calls
// Store issues (HEAD, GET, PUT, DELETE, ListObjectsV2) from memory. Plug it in
// through Config.HTTPClient.
type FakeBucket struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	now     func() time.Time
	// Requests counts calls per HTTP method.
	Requests map[string]int
}

type fakeObject struct {
	body        []byte
	contentType string
	metadata    map[string]string
	modified    time.Time
}

// NewFakeBucket returns an empty bucket.
func NewFakeBucket() *FakeBucket {
	return &FakeBucket{
		objects:  make(map[string]fakeObject),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		Requests: make(map[string]int),
	}
}

// Client wraps the bucket in an *http.Client.
func (f *FakeBucket) Client() *http.Client { return &http.Client{Transport: f} }

// Keys lists stored keys in order.
func (f *FakeBucket) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RoundTrip implements http.RoundTripper.
func (f *FakeBucket) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests[req.Method]++

	// path-style: /<bucket>/<key>
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	query := req.URL.Query()

	switch {
	case req.Method == http.MethodGet && query.Get("list-type") == "2":
		return f.list(req, query.Get("prefix"), query.Get("continuation-token"), query.Get("max-keys"))
	case req.Method == http.MethodHead:
		obj, ok := f.objects[key]
		if !ok {
			return respond(req, http.StatusNotFound, nil, nil), nil
		}
		return respond(req, http.StatusOK, objectHeaders(obj), nil), nil
	case req.Method == http.MethodGet:
		obj, ok := f.objects[key]
		if !ok {
			body := []byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return respond(req, http.StatusNotFound, http.Header{"Content-Type": {"application/xml"}}, body), nil
		}
		return respond(req, http.StatusOK, objectHeaders(obj), obj.body), nil
	case req.Method == http.MethodPut:
		body, err := readBody(req)
		if err != nil {
			return nil, err
		}
		obj := fakeObject{
			body:        body,
			contentType: req.Header.Get("Content-Type"),
			metadata:    map[string]string{},
			modified:    f.now(),
		}
		for name, values := range req.Header {
			lower := strings.ToLower(name)
			if strings.HasPrefix(lower, "x-amz-meta-") && len(values) > 0 {
				obj.metadata[strings.TrimPrefix(lower, "x-amz-meta-")] = values[0]
			}
		}
		f.objects[key] = obj
		return respond(req, http.StatusOK, http.Header{"Etag": {etag(body)}}, nil), nil
	case req.Method == http.MethodDelete:
		delete(f.objects, key)
		return respond(req, http.StatusNoContent, nil, nil), nil
	}
	return respond(req, http.StatusNotImplemented, nil, nil), nil
}

type listResult struct {
	XMLName               xml.Name      `xml:"ListBucketResult"`
	IsTruncated           bool          `xml:"IsTruncated"`
	KeyCount              int           `xml:"KeyCount"`
	NextContinuationToken string        `xml:"NextContinuationToken,omitempty"`
	Contents              []listContent `xml:"Contents"`
}

type listContent struct {
	Key          string `xml:"Key"`
	Size         int    `xml:"Size"`
	ETag         string `xml:"ETag"`
	LastModified string `xml:"LastModified"`
}

func (f *FakeBucket) list(req *http.Request, prefix, after, maxKeys string) (*http.Response, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) && k > after {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	result := listResult{}
	if n, err := strconv.Atoi(maxKeys); err == nil && n > 0 && len(keys) > n {
		keys = keys[:n]
		result.IsTruncated = true
		result.NextContinuationToken = keys[n-1]
	}
	for _, k := range keys {
		obj := f.objects[k]
		result.Contents = append(result.Contents, listContent{
			Key:          k,
			Size:         len(obj.body),
			ETag:         etag(obj.body),
			LastModified: obj.modified.Format(time.RFC3339),
		})
	}
	result.KeyCount = len(result.Contents)
	body, err := xml.Marshal(result)
	if err != nil {
		return nil, err
	}
	return respond(req, http.StatusOK, http.Header{"Content-Type": {"application/xml"}}, body), nil
}

func objectHeaders(obj fakeObject) http.Header {
	h := http.Header{
		"Content-Length": {strconv.Itoa(len(obj.body))},
		"Etag":           {etag(obj.body)},
		"Last-Modified":  {obj.modified.Format(http.TimeFormat)},
	}
	if obj.contentType != "" {
		h.Set("Content-Type", obj.contentType)
	}
	for k, v := range obj.metadata {
		h.Set("X-Amz-Meta-"+k, v)
	}
	return h
}

func respond(req *http.Request, status int, header http.Header, body []byte) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode:    status,
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func etag(body []byte) string {
	sum := md5.Sum(body) //nolint:gosec
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// readBody returns the request payload, decoding aws-chunked framing when
// the SDK streams a trailing checksum.
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	chunked := strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") ||
		req.Header.Get("X-Amz-Decoded-Content-Length") != ""
	if !chunked {
		return raw, nil
	}
	return decodeAWSChunked(raw)
}

func decodeAWSChunked(raw []byte) ([]byte, error) {
	var out bytes.Buffer
	r := bufio.NewReader(bytes.NewReader(raw))
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("aws-chunked header: %w", err)
		}
		sizeField := strings.TrimSpace(line)
		if i := strings.IndexByte(sizeField, ';'); i >= 0 {
			sizeField = sizeField[:i]
		}
		size, err := strconv.ParseInt(sizeField, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("aws-chunked size %q: %w", sizeField, err)
		}
		if size == 0 {
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, r, size); err != nil {
			return nil, fmt.Errorf("aws-chunked body: %w", err)
		}
		if _, err := r.Discard(2); err != nil {
			return nil, fmt.Errorf("aws-chunked terminator: %w", err)
		}
	}
}
