package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// ErrTooLarge is returned by Fetch when the body exceeds the size limit.
var ErrTooLarge = errors.New("spreadsheet too large")

const fetchAttempts = 3

// backoff is the wait before retry attempt n (n >= 1).
var backoff = func(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

var fetchClient = &http.Client{Timeout: 2 * time.Minute}

// contentTypeExt maps spreadsheet media types to a registered extension.
var contentTypeExt = map[string]string{
	"text/csv":                  ".csv",
	"application/csv":           ".csv",
	"text/tab-separated-values": ".tsv",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
	"application/vnd.ms-excel.sheet.macroenabled.12":                    ".xlsm",
}

// Fetch downloads a spreadsheet with retries and returns its bytes together
// with a file name callers can pick a Format from. The name comes from the
// URL path when it carries a known extension, else from Content-Disposition,
// else from Content-Type.
// Server errors and transport failures are retried; 4xx responses are not.
// maxBytes <= 0 means no limit.
func Fetch(ctx context.Context, rawURL string, maxBytes int64) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse url: %w", err)
	}
	name := path.Base(u.Path)

	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, "", fmt.Errorf("create request: %w", err)
		}

		resp, err := fetchClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
			if resp.StatusCode < 500 {
				return nil, "", lastErr
			}
			continue
		}

		body := io.Reader(resp.Body)
		if maxBytes > 0 {
			body = io.LimitReader(resp.Body, maxBytes+1)
		}
		data, err := io.ReadAll(body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if maxBytes > 0 && int64(len(data)) > maxBytes {
			return nil, "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
		}
		return data, responseName(name, resp.Header), nil
	}
	return nil, "", fmt.Errorf("download %s failed after %d attempts: %w", rawURL, fetchAttempts, lastErr)
}

// responseName picks the file name of a download. urlName is kept when its
// extension is registered.
func responseName(urlName string, h http.Header) string {
	if _, err := ForFile(urlName); err == nil {
		return urlName
	}
	if cd := h.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if fn := path.Base(strings.ReplaceAll(params["filename"], "\\", "/")); fn != "." && fn != "/" && fn != "" {
				if _, err := ForFile(fn); err == nil {
					return fn
				}
			}
		}
	}
	if mt, _, err := mime.ParseMediaType(h.Get("Content-Type")); err == nil {
		if ext, ok := contentTypeExt[strings.ToLower(mt)]; ok {
			base := strings.TrimSuffix(urlName, path.Ext(urlName))
			if base == "" || base == "." || base == "/" {
				base = "download"
			}
			return base + ext
		}
	}
	return urlName
}
