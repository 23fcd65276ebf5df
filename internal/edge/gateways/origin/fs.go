package origin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const indexFile = "index.html"

// FSOrigin serves files out of an fs.FS, such as a directory or the
// embedded default site.
type FSOrigin struct {
	fsys fs.FS
}

func NewFSOrigin(fsys fs.FS) *FSOrigin {
	return &FSOrigin{fsys: fsys}
}

// Fetch maps the request path onto the file system. Directories resolve to
// their index.html. Only GET and HEAD are served.
func (o *FSOrigin) Fetch(ctx context.Context, r *http.Request) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		resp := textResponse(r, http.StatusMethodNotAllowed)
		resp.Header.Set("Allow", "GET, HEAD")
		return resp, nil
	}

	name := resolveName(r.URL.Path)
	data, err := o.read(name)
	if errors.Is(err, fs.ErrNotExist) {
		return textResponse(r, http.StatusNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	header := make(http.Header)
	header.Set("Content-Type", contentType(name, data))
	header.Set("Content-Length", strconv.Itoa(len(data)))
	return newResponse(r, http.StatusOK, header, data), nil
}

// read returns the named file, following a directory to its index.
func (o *FSOrigin) read(name string) ([]byte, error) {
	info, err := fs.Stat(o.fsys, name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		name = path.Join(name, indexFile)
	}
	return fs.ReadFile(o.fsys, name)
}

// resolveName turns a URL path into a valid fs.FS name.
func resolveName(urlPath string) string {
	clean := path.Clean("/" + urlPath)
	name := strings.TrimPrefix(clean, "/")
	if name == "" {
		return indexFile
	}
	if strings.HasSuffix(urlPath, "/") {
		return path.Join(name, indexFile)
	}
	return name
}

// contentType prefers the extension and sniffs the bytes otherwise.
func contentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return mimetype.Detect(data).String()
}

func textResponse(r *http.Request, status int) *http.Response {
	body := []byte(strconv.Itoa(status) + " " + http.StatusText(status) + "\n")
	header := make(http.Header)
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set("Content-Length", strconv.Itoa(len(body)))
	return newResponse(r, status, header, body)
}

func newResponse(r *http.Request, status int, header http.Header, body []byte) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       r,
	}
}

var _ Origin = (*FSOrigin)(nil)
