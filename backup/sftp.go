package backup

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/kjk/tabdb/log"
	"github.com/kjk/tabdb/u"
	"github.com/melbahja/goph"
	"github.com/pkg/sftp"
)

// SFTPConfig is a server reachable with ssh
type SFTPConfig struct {
	User string
	Host string
	// path of private key, ~ is expanded
	KeyPath       string
	KeyPassphrase string
	// directory on the server, created if doesn't exist
	Dir string
	// compression of uploaded files, zstd if empty
	Codec string
}

func (c *SFTPConfig) codec() string {
	if c.Codec == "" {
		return u.CodecZstd
	}
	return c.Codec
}

func (c *SFTPConfig) validate() error {
	if c.User == "" || c.Host == "" || c.KeyPath == "" || c.Dir == "" {
		return errors.New("backup: must provide User, Host, KeyPath and Dir in sftp config")
	}
	return validateCodec(c.Codec)
}

// UploadSFTP uploads the table file at primaryPath and its index to
// config.Dir on the server. Each file is written to a temporary name
// and renamed, so the server never has a partial file.
func UploadSFTP(ctx context.Context, config *SFTPConfig, primaryPath string) ([]string, error) {
	if config == nil {
		return nil, errors.New("backup: must provide sftp config")
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	paths, err := localFiles(primaryPath)
	if err != nil {
		return nil, err
	}

	keyPath := u.ExpandTildeInPath(config.KeyPath)
	auth, err := goph.Key(keyPath, config.KeyPassphrase)
	if err != nil {
		return nil, fmt.Errorf("backup: goph.Key('%s') failed: %w", keyPath, err)
	}
	client, err := goph.New(config.User, config.Host, auth)
	if err != nil {
		return nil, fmt.Errorf("backup: ssh connection to '%s@%s' failed: %w", config.User, config.Host, err)
	}
	defer client.Close()

	sc, err := client.NewSftp()
	if err != nil {
		return nil, fmt.Errorf("backup: client.NewSftp() failed: %w", err)
	}
	defer sc.Close()

	if err = sc.MkdirAll(config.Dir); err != nil {
		return nil, fmt.Errorf("backup: sftp.MkdirAll('%s') failed: %w", config.Dir, err)
	}

	codec := config.codec()
	ext := u.CodecExt(codec)
	name := filepath.Base(primaryPath)
	remotePaths := []string{
		path.Join(config.Dir, name) + ext,
		path.Join(config.Dir, IndexPath(name)) + ext,
	}
	for i, localPath := range paths {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		timeStart := time.Now()
		d, err := readCompressed(localPath, codec)
		if err != nil {
			return nil, err
		}
		remotePath := remotePaths[i]
		if err = sftpWriteFile(sc, remotePath, d); err != nil {
			return nil, err
		}
		log.Verbosef("uploaded '%s' to '%s:%s' (%s)\n", localPath, config.Host, remotePath, u.FormatSize(int64(len(d))))
		log.EventWithDuration("backup.sftp", time.Since(timeStart), "host", config.Host, "path", remotePath, "size", len(d), "origsize", u.FileSize(localPath))
	}
	return remotePaths, nil
}

func sftpWriteFile(sc *sftp.Client, remotePath string, d []byte) error {
	tmpPath := remotePath + ".tmp"
	f, err := sc.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("backup: sftp.Create('%s') failed: %w", tmpPath, err)
	}
	_, err = f.Write(d)
	err2 := f.Close()
	if err = errors.Join(err, err2); err != nil {
		_ = sc.Remove(tmpPath)
		return fmt.Errorf("backup: writing '%s' failed: %w", tmpPath, err)
	}
	if err = sc.PosixRename(tmpPath, remotePath); err != nil {
		_ = sc.Remove(tmpPath)
		return fmt.Errorf("backup: sftp.PosixRename('%s') failed: %w", remotePath, err)
	}
	return nil
}
