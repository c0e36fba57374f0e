package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const fileServiceFilesPath = "api/v1/files"

// UploadedFile is what a FileUploader hands back on success.
type UploadedFile struct {
	UUID string `json:"uuid"`
	URL  string `json:"file_url"`
}

// FileUploader stores raw attachment bytes. Every failure is ErrUpstream.
type FileUploader interface {
	Upload(ctx context.Context, name string, data []byte) (UploadedFile, error)
}

// HTTPFileService talks to the internal file service. Only 201 Created counts
// as success; the body is fully read before returning.
type HTTPFileService struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPFileService(baseURL, token string) *HTTPFileService {
	return &HTTPFileService{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPFileService) Upload(ctx context.Context, name string, data []byte) (UploadedFile, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err == nil {
		_, err = part.Write(data)
	}
	if err == nil {
		err = mw.WriteField("return_download_file_url_flag", "True")
	}
	if err == nil {
		err = mw.WriteField("temp_flag", "False")
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		return UploadedFile{}, errors.Wrapf(ErrUpstream, "build upload of %s: %v", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+fileServiceFilesPath, &body)
	if err != nil {
		return UploadedFile{}, errors.Wrapf(ErrUpstream, "build upload of %s: %v", name, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if s.token != "" {
		req.Header.Set("server-auth", s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return UploadedFile{}, errors.Wrapf(ErrUpstream, "upload %s: %v", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadedFile{}, errors.Wrapf(ErrUpstream, "read upload response: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return UploadedFile{}, errors.Wrapf(ErrUpstream, "file service answered %d", resp.StatusCode)
	}
	var out UploadedFile
	if err := json.Unmarshal(raw, &out); err != nil || out.UUID == "" || out.URL == "" {
		return UploadedFile{}, errors.Wrap(ErrUpstream, "file service returned an unusable body")
	}
	return out, nil
}

// NoUploader rejects every attachment; used when no upload backend is configured.
type NoUploader struct{}

func (NoUploader) Upload(context.Context, string, []byte) (UploadedFile, error) {
	return UploadedFile{}, errors.Wrap(ErrUpstream, "file uploads are not configured")
}
