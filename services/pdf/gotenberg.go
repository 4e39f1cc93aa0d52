package pdfsvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/report"
)

var (
	chromiumHTMLRoute = "/forms/chromium/convert/html"

	errSessionClosed = errors.New("renderer session closed")
)

// Gotenberg renders HTML to PDF through a Gotenberg server's Chromium module.
type Gotenberg struct {
	url     string
	timeout time.Duration
}

var _ report.Renderer = (*Gotenberg)(nil)

func NewGotenberg(conf *core.Config) *Gotenberg {
	return &Gotenberg{
		url:     strings.TrimRight(conf.Renderer.URL, "/"),
		timeout: conf.Renderer.Timeout,
	}
}

// NewSession gives each caller its own HTTP transport, so no connection is shared between renders.
func (g *Gotenberg) NewSession(ctx context.Context) (report.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        1,
		IdleConnTimeout:     g.timeout,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &gotenbergSession{
		url:       g.url + chromiumHTMLRoute,
		transport: transport,
		client:    &http.Client{Transport: transport, Timeout: g.timeout},
	}, nil
}

type gotenbergSession struct {
	url       string
	transport *http.Transport
	client    *http.Client

	mu     sync.Mutex
	closed bool
}

func (s *gotenbergSession) Render(ctx context.Context, html []byte) ([]byte, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, errSessionClosed
	}

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, errors.Wrap(err, "creating form file")
	}
	if _, err = part.Write(html); err != nil {
		return nil, errors.Wrap(err, "writing form file")
	}
	if err = writer.Close(); err != nil {
		return nil, errors.Wrap(err, "closing form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "sending request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("gotenberg: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}
	return pdf, nil
}

func (s *gotenbergSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	s.closed = true
	s.transport.CloseIdleConnections()
	return nil
}
