package storage

import (
	"fmt"
	"path"
	"strings"
)

const (
	mediaSourcePrefix = "media-source://media_source/local/"
	filePrefix        = "file://"
	s3Prefix          = "s3://"
)

// Resolver maps voice-sample locator strings to a FileStore and a path
// within it. Supported locator forms:
//
//	/abs/or/relative/path.wav        local filesystem
//	file:///abs/path.wav             local filesystem
//	media-source://media_source/local/<rel>   media root directory
//	s3://bucket/key.wav              S3-compatible object store
//
// Locators with any other scheme resolve to ErrUnsupportedLocator so that
// enrollment can skip them and continue.
type Resolver struct {
	local *Local
	media *Local
	s3    S3Client
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMediaRoot sets the directory that media-source:// locators resolve
// under. Without it, media-source locators are unsupported.
func WithMediaRoot(media *Local) ResolverOption {
	return func(r *Resolver) { r.media = media }
}

// WithS3 sets the S3 client used for s3:// locators. Without it, s3
// locators are unsupported.
func WithS3(client S3Client) ResolverOption {
	return func(r *Resolver) { r.s3 = client }
}

// NewResolver creates a Resolver. Plain paths and file:// locators resolve
// against local, which is typically a store rooted at the filesystem root.
func NewResolver(local *Local, opts ...ResolverOption) *Resolver {
	r := &Resolver{local: local}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the store and path for the given locator.
func (r *Resolver) Resolve(locator string) (FileStore, string, error) {
	switch {
	case strings.HasPrefix(locator, mediaSourcePrefix):
		if r.media == nil {
			return nil, "", fmt.Errorf("%w: no media root for %q", ErrUnsupportedLocator, locator)
		}
		return r.media, strings.TrimPrefix(locator, mediaSourcePrefix), nil

	case strings.HasPrefix(locator, filePrefix):
		return r.local, strings.TrimPrefix(locator, filePrefix), nil

	case strings.HasPrefix(locator, s3Prefix):
		if r.s3 == nil {
			return nil, "", fmt.Errorf("%w: no s3 client for %q", ErrUnsupportedLocator, locator)
		}
		rest := strings.TrimPrefix(locator, s3Prefix)
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return nil, "", fmt.Errorf("%w: malformed s3 locator %q", ErrUnsupportedLocator, locator)
		}
		return NewS3(r.s3, bucket, ""), key, nil

	case strings.Contains(locator, "://"):
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedLocator, locator)

	default:
		// Bare filesystem path.
		return r.local, locator, nil
	}
}

// SidecarPath derives the path of an artifact stored next to the named
// file: the extension is replaced by suffix (e.g. "alice.wav" with suffix
// ".embedding" becomes "alice.embedding").
func SidecarPath(p, suffix string) string {
	ext := path.Ext(p)
	return p[:len(p)-len(ext)] + suffix
}
