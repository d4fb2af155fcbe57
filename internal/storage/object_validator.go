package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalog-backend/internal/config"
	"catalog-backend/internal/domain"
	"catalog-backend/internal/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	ErrForeignObject = fmt.Errorf("%w: image must be hosted in the catalog bucket", domain.ErrValidation)
	ErrMissingObject = fmt.Errorf("%w: image does not exist in object storage", domain.ErrValidation)
)

// HTTPObjectValidator checks that image URLs point at objects that exist in
// the public bucket by issuing a HEAD request per URL.
type HTTPObjectValidator struct {
	publicURL string
	client    *resty.Client
	logger    *zap.Logger
}

// NewHTTPObjectValidator returns nil when no public URL is configured, which
// callers treat as "accept every URL".
func NewHTTPObjectValidator(cfg config.ObjectStorageConfig, log *zap.Logger) *HTTPObjectValidator {
	if cfg.PublicURL == "" {
		return nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &HTTPObjectValidator{
		publicURL: strings.TrimRight(cfg.PublicURL, "/") + "/",
		client:    resty.New().SetTimeout(timeout),
		logger:    logger.Component(log, "object_validator"),
	}
}

// ValidateObject fails with a validation error when url is outside the
// bucket or the object is missing.
func (v *HTTPObjectValidator) ValidateObject(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, v.publicURL) {
		return ErrForeignObject
	}

	resp, err := v.client.R().SetContext(ctx).Head(url)
	if err != nil {
		v.logger.Warn("Object storage unreachable", zap.String("url", url), zap.Error(err))
		return domain.NewStorageError("check image object", err)
	}

	if !resp.IsSuccess() {
		v.logger.Debug("Image object rejected",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode()),
		)
		return ErrMissingObject
	}
	return nil
}

// Close releases idle connections held by the HTTP client
func (v *HTTPObjectValidator) Close() {
	v.client.GetClient().CloseIdleConnections()
}
