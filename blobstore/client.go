// Package blobstore wraps the blob-storage/CDN collaborator: authenticated
// raw-byte uploads, transform-URL construction, asset deletion, and
// fetch-by-fixed-key/overwrite for small JSON documents.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/movilworks/portfolio-backend/config"
	"github.com/movilworks/portfolio-backend/errs"
)

// Asset identifies one stored object.
type Asset struct {
	ID  string // object key issued on upload
	URL string // direct CDN URL
}

// UploadOptions describe the incoming bytes.
type UploadOptions struct {
	Filename     string
	ContentType  string
	ResourceType string // image or video; folders uploads by kind
}

// Transform describes an on-the-fly derived rendition.
type Transform struct {
	Width  int
	Height int
	Format string // output format, defaults to jpg
}

// Client talks to the S3-compatible store and the CDN in front of it.
type Client struct {
	s3            *s3.Client
	bucket        string
	folder        string
	cdnBase       string
	transformBase string
	logger        zerolog.Logger
}

// New builds a client from settings, or a ConfigurationError when the
// remote backend is selected but credentials are absent.
func New(ctx context.Context, settings config.Settings) (*Client, error) {
	if !settings.BlobEnabled() {
		return nil, errs.NewConfigurationError("BLOB_BUCKET", "BLOB_REGION")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(settings.BlobRegion))
	if err != nil {
		return nil, errs.NewConfigurationError("AWS credentials")
	}

	return &Client{
		s3:            s3.NewFromConfig(awsCfg),
		bucket:        settings.BlobBucket,
		folder:        settings.BlobFolder,
		cdnBase:       settings.CDNBaseURL,
		transformBase: settings.TransformURL,
		logger:        log.With().Str("component", "blobstore").Logger(),
	}, nil
}

// Upload stores raw bytes and returns the issued asset id plus direct URL.
func (c *Client) Upload(ctx context.Context, r io.Reader, opts UploadOptions) (Asset, error) {
	ext := strings.ToLower(path.Ext(opts.Filename))
	kind := opts.ResourceType
	if kind == "" {
		kind = "image"
	}
	key := fmt.Sprintf("%s/%s/%s%s", c.folder, kind, uuid.NewString(), ext)

	body, err := io.ReadAll(r)
	if err != nil {
		return Asset{}, errs.NewUploadError(c.bucket, err)
	}

	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(opts.ContentType),
	})
	if err != nil {
		return Asset{}, errs.NewUploadError(c.bucket, err)
	}

	return Asset{ID: key, URL: c.AssetURL(key)}, nil
}

// Delete removes one asset by id.
func (c *Client) Delete(ctx context.Context, assetID string) error {
	if assetID == "" {
		return nil
	}
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(assetID),
	})
	return err
}

// AssetURL builds the direct CDN URL for an asset id.
func (c *Client) AssetURL(assetID string) string {
	if c.cdnBase == "" {
		return "/" + strings.TrimLeft(assetID, "/")
	}
	return c.cdnBase + "/" + strings.TrimLeft(assetID, "/")
}

// TransformURL constructs an on-the-fly rendition URL for an asset id. The
// transform proxy derives the rendition at request time; nothing is stored.
func (c *Client) TransformURL(assetID string, t Transform) string {
	if assetID == "" {
		return ""
	}
	base := c.transformBase
	if base == "" {
		return c.AssetURL(assetID)
	}
	format := t.Format
	if format == "" {
		format = "jpg"
	}
	return fmt.Sprintf("%s/w_%d,h_%d,c_fill,f_%s/%s", base, t.Width, t.Height, format,
		strings.TrimLeft(assetID, "/"))
}
