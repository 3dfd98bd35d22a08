package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kjk/tabdb/log"
	"github.com/kjk/tabdb/u"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const metaCodec = "Tabdb-Codec"

// Config is S3-compatible storage (AWS S3, Cloudflare R2, Backblaze B2, minio)
type Config struct {
	Access   string
	Secret   string
	Bucket   string
	Endpoint string
	Region   string
	// use http instead of https, for local minio
	Insecure bool
	// compression of uploaded files, zstd if empty
	Codec        string
	RequestTrace io.Writer
}

func (c *Config) codec() string {
	if c.Codec == "" {
		return u.CodecZstd
	}
	return c.Codec
}

func (c *Config) validate() error {
	if c.Access == "" || c.Secret == "" || c.Bucket == "" || c.Endpoint == "" {
		return errors.New("backup: must provide Access, Secret, Bucket and Endpoint in config")
	}
	return validateCodec(c.Codec)
}

type Client struct {
	Client *minio.Client
	config *Config
	Bucket string
}

// New creates a client and checks that the bucket exists
func New(ctx context.Context, config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("backup: must provide config")
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	mc, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Access, config.Secret, ""),
		Region: config.Region,
		Secure: !config.Insecure,
	})
	if err != nil {
		return nil, err
	}
	if config.RequestTrace != nil {
		mc.TraceOn(config.RequestTrace)
	}
	found, err := mc.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("backup: bucket '%s' doesn't exist", config.Bucket)
	}
	return &Client{
		Client: mc,
		config: config,
		Bucket: config.Bucket,
	}, nil
}

// Exists returns true if remotePath exists in the bucket
func (c *Client) Exists(ctx context.Context, remotePath string) bool {
	_, err := c.Client.StatObject(ctx, c.Bucket, remotePath, minio.StatObjectOptions{})
	return err == nil
}

func (c *Client) uploadData(ctx context.Context, remotePath string, data []byte) (minio.UploadInfo, error) {
	opts := minio.PutObjectOptions{
		ContentType: "application/octet-stream",
		UserMetadata: map[string]string{
			metaCodec: c.config.codec(),
		},
	}
	r := bytes.NewReader(data)
	return c.Client.PutObject(ctx, c.Bucket, remotePath, r, int64(len(data)), opts)
}

// UploadStore uploads the table file at primaryPath and its index
// under prefix. Returns remote names of uploaded files.
func (c *Client) UploadStore(ctx context.Context, primaryPath string, prefix string) ([]string, error) {
	paths, err := localFiles(primaryPath)
	if err != nil {
		return nil, err
	}
	codec := c.config.codec()
	primaryKey, indexKey := RemoteKeys(prefix, primaryPath, codec)
	keys := []string{primaryKey, indexKey}
	for i, path := range paths {
		timeStart := time.Now()
		d, err := readCompressed(path, codec)
		if err != nil {
			return nil, err
		}
		_, err = c.uploadData(ctx, keys[i], d)
		if err != nil {
			return nil, fmt.Errorf("backup: upload of '%s' as '%s' failed: %w", path, keys[i], err)
		}
		log.Verbosef("uploaded '%s' as '%s' (%s) in %s\n", path, keys[i], u.FormatSize(int64(len(d))), u.FormatDuration(time.Since(timeStart)))
		log.EventWithDuration("backup.upload", time.Since(timeStart), "key", keys[i], "size", len(d), "origsize", u.FileSize(path), "codec", codec)
	}
	return keys, nil
}

// DownloadStore restores files uploaded with UploadStore to dstPath.
// Remote names are based on file name of dstPath.
func (c *Client) DownloadStore(ctx context.Context, prefix string, dstPath string) error {
	codec := c.config.codec()
	primaryKey, indexKey := RemoteKeys(prefix, dstPath, codec)
	// don't replace local files with a partial backup
	for _, key := range []string{indexKey, primaryKey} {
		if !c.Exists(ctx, key) {
			return fmt.Errorf("backup: '%s' doesn't exist in bucket '%s'", key, c.Bucket)
		}
	}
	// index is restored first so that a table file is never newer than its index
	if err := c.downloadFile(ctx, indexKey, IndexPath(dstPath)); err != nil {
		return err
	}
	return c.downloadFile(ctx, primaryKey, dstPath)
}

func (c *Client) downloadFile(ctx context.Context, remotePath string, dstPath string) error {
	timeStart := time.Now()
	obj, err := c.Client.GetObject(ctx, c.Bucket, remotePath, minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()
	st, err := obj.Stat()
	if err != nil {
		return fmt.Errorf("backup: download of '%s' failed: %w", remotePath, err)
	}
	// files uploaded with a different codec say so in metadata
	codec := st.UserMetadata[metaCodec]
	if codec == "" {
		codec = c.config.codec()
	}
	if err = writeDecompressed(dstPath, codec, obj); err != nil {
		return err
	}
	log.EventWithDuration("backup.download", time.Since(timeStart), "key", remotePath, "path", dstPath)
	return nil
}

// List returns names of remote files under prefix
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}
	var res []string
	for oi := range c.Client.ListObjects(ctx, c.Bucket, opts) {
		if oi.Err != nil {
			return nil, oi.Err
		}
		res = append(res, oi.Key)
	}
	return res, nil
}

// Remove deletes remotePath from the bucket
func (c *Client) Remove(ctx context.Context, remotePath string) error {
	return c.Client.RemoveObject(ctx, c.Bucket, remotePath, minio.RemoveObjectOptions{})
}
