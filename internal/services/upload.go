package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"quizforge-backend/internal/models"
)

const (
	// Files above this size must go through the pre-signed upload path.
	InlineUploadLimit = 8 * 1024 * 1024
	// Absolute ceiling for any upload, inline or remote.
	MaxUploadSize = 100 * 1024 * 1024

	signedUploadExpiry = 10 * time.Minute
)

var allowedExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".m4a": true,
	".mp4": true,
	".mov": true,
	".avi": true,
	".txt": true,
	".md":  true,
}

type UploadService struct {
	httpClient *http.Client
	storage    *storage.Client
	bucket     string
	accessID   string
	privateKey []byte
}

func NewUploadService(storageClient *storage.Client, bucket, accessID string, privateKey []byte) *UploadService {
	return &UploadService{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		storage:    storageClient,
		bucket:     bucket,
		accessID:   accessID,
		privateKey: privateKey,
	}
}

// AllowedExtension reports whether the filename carries a supported extension.
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SanitizeFilename replaces every character outside [A-Za-z0-9._-] with "_",
// preserving length, so the result is safe as a storage key.
func SanitizeFilename(name string) string {
	out := []byte(name)
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// RouteUpload normalizes an incoming file to a byte buffer. Either inline
// bytes or a remote object URL must be provided; inline payloads above
// InlineUploadLimit are rejected because large files are expected to arrive
// through the pre-signed upload indirection.
func (s *UploadService) RouteUpload(ctx context.Context, inline []byte, remoteURL, filename string) ([]byte, error) {
	if !AllowedExtension(filename) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, filepath.Ext(filename))
	}

	if len(inline) > 0 {
		if len(inline) > MaxUploadSize {
			return nil, ErrFileTooLarge
		}
		if len(inline) > InlineUploadLimit {
			return nil, ErrInlineTooLarge
		}
		return inline, nil
	}

	if remoteURL == "" {
		return nil, &ValidationError{Fields: map[string]string{"file": "Either a file or a fileUrl is required"}}
	}

	return s.fetchRemote(ctx, remoteURL)
}

// fetchRemote pulls the uploaded object back from blob storage. Objects in our
// own bucket are read through the storage client; anything else is a plain
// HTTP fetch. No retry at this layer.
func (s *UploadService) fetchRemote(ctx context.Context, remoteURL string) ([]byte, error) {
	if key, ok := s.bucketKeyFromURL(remoteURL); ok && s.storage != nil {
		rc, err := s.storage.Bucket(s.bucket).Object(key).NewReader(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetworkFetch, err)
		}
		defer rc.Close()
		return readCapped(rc)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkFetch, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrNetworkFetch, resp.StatusCode)
	}
	if resp.ContentLength > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	return readCapped(resp.Body)
}

func readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkFetch, err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

func (s *UploadService) bucketKeyFromURL(remoteURL string) (string, bool) {
	if s.bucket == "" {
		return "", false
	}
	u, err := url.Parse(remoteURL)
	if err != nil {
		return "", false
	}
	prefix := "/" + s.bucket + "/"
	if u.Host == "storage.googleapis.com" && strings.HasPrefix(u.Path, prefix) {
		return strings.TrimPrefix(u.Path, prefix), true
	}
	return "", false
}

// CreateSignedUpload issues a signed POST policy so the client can upload
// directly to blob storage. 10-minute expiry, 100 MB content-length cap.
func (s *UploadService) CreateSignedUpload(filename, contentType string) (*models.SignedUpload, error) {
	if s.bucket == "" || s.accessID == "" || len(s.privateKey) == 0 {
		return nil, fmt.Errorf("blob storage is not configured")
	}
	if !AllowedExtension(filename) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, filepath.Ext(filename))
	}

	key := fmt.Sprintf("uploads/%s_%s", uuid.New().String(), SanitizeFilename(filename))

	policy, err := storage.GenerateSignedPostPolicyV4(s.bucket, key, &storage.PostPolicyV4Options{
		GoogleAccessID: s.accessID,
		PrivateKey:     s.privateKey,
		Expires:        time.Now().Add(signedUploadExpiry),
		Fields:         &storage.PolicyV4Fields{ContentType: contentType},
		Conditions: []storage.PostPolicyV4Condition{
			storage.ConditionContentLengthRange(0, MaxUploadSize),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload policy: %w", err)
	}

	return &models.SignedUpload{
		URL:       policy.URL,
		Fields:    policy.Fields,
		Key:       key,
		PublicURL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key),
	}, nil
}
