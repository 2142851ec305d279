package cloudinary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/reeltube/server/internal/repository/media"
)

const defaultBaseURL = "https://api.cloudinary.com"

type Config struct {
	CloudName    string
	UploadPreset string
	// BaseURL overrides the cloudinary API host, used by tests.
	BaseURL string
}

type uploader struct {
	httpClient   *http.Client
	baseURL      string
	cloudName    string
	uploadPreset string
}

func NewUploader(cfg *Config) *uploader {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &uploader{
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		baseURL:      baseURL,
		cloudName:    cfg.CloudName,
		uploadPreset: cfg.UploadPreset,
	}
}

// Upload sends the file to the unsigned video upload endpoint and returns
// the playable URL with the host-side asset id.
func (u *uploader) Upload(ctx context.Context, params *media.UploadParams) (media.UploadedMedia, error) {
	if len(params.File) == 0 {
		return media.UploadedMedia{}, media.ErrEmptyFile
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	filename := params.Filename
	if filename == "" {
		filename = "reel"
	}
	filePart, err := form.CreateFormFile("file", filename)
	if err != nil {
		return media.UploadedMedia{}, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := filePart.Write(params.File); err != nil {
		return media.UploadedMedia{}, fmt.Errorf("failed to write file part: %w", err)
	}

	if err := form.WriteField("upload_preset", u.uploadPreset); err != nil {
		return media.UploadedMedia{}, fmt.Errorf("failed to write upload preset: %w", err)
	}
	if err := form.WriteField("resource_type", "video"); err != nil {
		return media.UploadedMedia{}, fmt.Errorf("failed to write resource type: %w", err)
	}

	if err := form.Close(); err != nil {
		return media.UploadedMedia{}, fmt.Errorf("failed to close form: %w", err)
	}

	url := fmt.Sprintf("%s/v1_1/%s/video/upload", u.baseURL, u.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return media.UploadedMedia{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return media.UploadedMedia{}, fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return media.UploadedMedia{}, fmt.Errorf("%w: status %d", media.ErrUploadRejected, resp.StatusCode)
	}

	var uploadResp struct {
		SecureURL string `json:"secure_url"`
		PublicId  string `json:"public_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return media.UploadedMedia{}, fmt.Errorf("failed to decode upload response: %w", err)
	}

	return media.UploadedMedia{
		Url:     uploadResp.SecureURL,
		MediaId: uploadResp.PublicId,
	}, nil
}
