// Package textextract turns user-supplied study material (web pages, PDFs,
// plain text) into text the quiz generator can use.
package textextract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"

	"github.com/yungbote/memequiz-backend/internal/pkg/httpx"
)

const (
	maxPageBytes = 5 << 20
	userAgent    = "Mozilla/5.0 (compatible; memequiz/1.0)"
)

var (
	ErrUnsupportedFile = fmt.Errorf("unsupported file type")
	ErrInvalidURL      = fmt.Errorf("invalid url")
)

type Extractor struct {
	client *http.Client
}

func New(client *http.Client) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Extractor{client: client}
}

// FromURL fetches a page and returns its readable article text. Non-HTML
// bodies are returned as-is.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", u.Host, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &httpx.StatusError{StatusCode: resp.StatusCode, Body: string(body[:min(len(body), 512)])}
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if ct != "" && !strings.Contains(ct, "html") {
		return normalize(string(body)), nil
	}
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	return normalize(article.TextContent), nil
}

// FromFile extracts text from an uploaded file, chosen by extension.
func (e *Extractor) FromFile(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return pdfText(data)
	case ".txt", ".md", ".markdown":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s is not valid UTF-8", name)
		}
		return normalize(string(data)), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(name))
	}
}

func pdfText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pt, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(pt)
		sb.WriteString("\n")
	}
	return normalize(sb.String()), nil
}

// normalize collapses runs of blank lines and trims each line.
func normalize(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, ln)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
