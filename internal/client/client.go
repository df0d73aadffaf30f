// Package client talks to the document search server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/source"
	"github.com/cheerioskun/textfinder/internal/utils"
)

// StatusOK is the status value of a successful server response
const StatusOK = "ok"

// ErrNoFileID is returned when the server accepts an upload but sends no id
var ErrNoFileID = errors.New("server returned no file id")

// ServerError is a logical failure reported by the server (status != "ok").
// Message is passed through to the user verbatim.
type ServerError struct {
	Status     string
	Message    string
	StatusCode int
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server responded with status %q (HTTP %d)", e.Status, e.StatusCode)
}

// Config holds the client settings
type Config struct {
	BaseURL string
	Timeout time.Duration // zero means no timeout
}

// Client is an HTTP client for the search server endpoints
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the server at cfg.BaseURL
func New(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// BaseURL returns the server root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchResponse is the body of POST /search_upload
type SearchResponse struct {
	Status  string               `json:"status"`
	Count   int                  `json:"count"`
	Matches []models.MatchRecord `json:"matches"`
	Message string               `json:"message"`
}

type uploadResponse struct {
	Status  string `json:"status"`
	FileID  string `json:"file_id"`
	Message string `json:"message"`
}

type messageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SearchUpload sends the query, the relative path map and every collected
// file in a single multipart request
func (c *Client) SearchUpload(ctx context.Context, query string, files *models.FileSet) (*SearchResponse, error) {
	paths, err := json.Marshal(files.Paths())
	if err != nil {
		return nil, fmt.Errorf("failed to encode paths: %w", err)
	}

	body, contentType := streamMultipart(func(w *multipart.Writer) error {
		if err := w.WriteField("q", query); err != nil {
			return err
		}
		if err := w.WriteField("paths", string(paths)); err != nil {
			return err
		}
		for _, f := range files.Files() {
			if err := writeFilePart(w, "files", f.Name, f.Handle); err != nil {
				return err
			}
		}
		return nil
	})

	var resp SearchResponse
	status, err := c.post(ctx, "/search_upload", contentType, body, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Status != StatusOK {
		return nil, &ServerError{Status: resp.Status, Message: resp.Message, StatusCode: status}
	}

	utils.Info("Search for %q returned %d match(es)", query, resp.Count)
	return &resp, nil
}

// UploadForView uploads a single file together with its absolute path and
// returns the server-issued file identifier
func (c *Client) UploadForView(ctx context.Context, name string, file source.FileHandle, originalPath string) (string, error) {
	body, contentType := streamMultipart(func(w *multipart.Writer) error {
		if err := writeFilePart(w, "file", name, file); err != nil {
			return err
		}
		return w.WriteField("original_path", strings.ReplaceAll(originalPath, `\`, "/"))
	})

	var resp uploadResponse
	status, err := c.post(ctx, "/upload_for_view", contentType, body, &resp)
	if err != nil {
		return "", err
	}
	if resp.Status != StatusOK {
		return "", &ServerError{Status: resp.Status, Message: resp.Message, StatusCode: status}
	}
	if resp.FileID == "" {
		return "", ErrNoFileID
	}
	return resp.FileID, nil
}

// OpenFolder asks the server to reveal the folder containing fileID and
// returns the server's message
func (c *Client) OpenFolder(ctx context.Context, fileID string) (string, error) {
	var resp messageResponse
	status, err := c.post(ctx, "/open_folder/"+url.PathEscape(fileID), "", nil, &resp)
	if err != nil {
		return "", err
	}
	if resp.Status != StatusOK {
		return "", &ServerError{Status: resp.Status, Message: resp.Message, StatusCode: status}
	}
	return resp.Message, nil
}

// FileURL is the raw file route; page is appended as a #page fragment
func (c *Client) FileURL(fileID, page string) string {
	u := c.baseURL + "/get_file/" + url.PathEscape(fileID)
	if page != "" {
		u += "#page=" + page
	}
	return u
}

// TextViewURL is the office/table text viewer route
func (c *Client) TextViewURL(fileID, query string) string {
	return c.baseURL + "/view_text/" + url.PathEscape(fileID) + "?q=" + url.QueryEscape(query)
}

// CodeViewURL is the generic code viewer route
func (c *Client) CodeViewURL(fileID, query string) string {
	return c.baseURL + "/view_code/" + url.PathEscape(fileID) + "?q=" + url.QueryEscape(query)
}

// post issues a POST and decodes the JSON reply into out. The HTTP status is
// returned so logical failures can report it.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("error creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("error reading response: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, &ServerError{
				Status:     "error",
				Message:    fmt.Sprintf("server returned %s", resp.Status),
				StatusCode: resp.StatusCode,
			}
		}
		return resp.StatusCode, fmt.Errorf("error parsing response: %w", err)
	}

	return resp.StatusCode, nil
}

// streamMultipart runs write in a goroutine and returns the read side of the
// encoded form, so large uploads are never buffered in memory
func streamMultipart(write func(w *multipart.Writer) error) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := write(mw)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}

func writeFilePart(w *multipart.Writer, field, name string, file source.FileHandle) error {
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return err
	}

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer rc.Close()

	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return nil
}
