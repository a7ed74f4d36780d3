package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrRemoteRejected = errors.New("remote store rejected the request")

type RemoteConfig struct {
	BaseURL   string
	PublicURL string
	Token     string
	Timeout   time.Duration
}

// RemoteStore PUTs objects to BaseURL/<name>. The endpoint answers with
// {"url": "..."}; when it does not, BaseURL/<name> is used as the public URL.
type RemoteStore struct {
	client   *resty.Client
	baseURL  string
	prefixes []string
}

type remoteSaveResponse struct {
	URL string `json:"url"`
}

func NewRemoteStore(cfg RemoteConfig) *RemoteStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")

	client := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.Timeout)
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	prefixes := []string{base + "/"}
	if public := strings.TrimRight(cfg.PublicURL, "/"); public != "" && public != base {
		prefixes = append(prefixes, public+"/")
	}

	return &RemoteStore{client: client, baseURL: base, prefixes: prefixes}
}

func (s *RemoteStore) Save(ctx context.Context, name string, body io.Reader, _ int64, contentType string) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var out remoteSaveResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(body).
		SetResult(&out).
		Put("/" + name)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return "", err
	}

	if out.URL != "" {
		return out.URL, nil
	}
	return s.baseURL + "/" + name, nil
}

func (s *RemoteStore) Manages(url string) bool {
	_, ok := s.objectName(url)
	return ok
}

func (s *RemoteStore) objectName(url string) (string, bool) {
	url = strings.TrimSpace(url)
	for _, prefix := range s.prefixes {
		if strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix), true
		}
	}
	return "", false
}

func (s *RemoteStore) Delete(ctx context.Context, url string) error {
	raw, ok := s.objectName(url)
	if !ok {
		return ErrNotManaged
	}
	name, err := cleanName(raw)
	if err != nil {
		return err
	}

	resp, err := s.client.R().SetContext(ctx).Delete("/" + name)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	return checkResponse(resp)
}

func checkResponse(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}
	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("%w: http %d: %s", ErrRemoteRejected, resp.StatusCode(), body)
}
