package remote

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/sftp"
	"go.uber.org/zap"
)

// sftpClient opens an SFTP subsystem on the current connection.
// The caller closes it.
func (c *Client) sftpClient() (*sftp.Client, error) {
	c.mu.Lock()
	if c.conn == nil {
		conn, err := c.dial()
		if err != nil {
			c.mu.Unlock()
			return nil, err
		}
		c.conn = conn
	}
	conn := c.conn
	c.mu.Unlock()

	client, err := sftp.NewClient(conn)
	if err != nil {
		c.drop()
		return nil, fmt.Errorf("failed to open sftp session: %w", err)
	}
	return client, nil
}

// Upload copies a local file to the guest, creating parent directories and
// preserving the executable bit so payload scripts stay runnable.
func (c *Client) Upload(localPath, remotePath string) error {
	client, err := c.sftpClient()
	if err != nil {
		return err
	}
	defer client.Close()

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer src.Close()

	if dir := filepath.Dir(remotePath); dir != "." && dir != "/" {
		if err := client.MkdirAll(dir); err != nil {
			return fmt.Errorf("failed to create remote dir %s: %w", dir, err)
		}
	}

	dst, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("failed to create remote file %s: %w", remotePath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to upload %s: %w", localPath, err)
	}

	if info, err := os.Stat(localPath); err == nil && info.Mode()&0o111 != 0 {
		_ = client.Chmod(remotePath, info.Mode().Perm())
	}

	zap.S().Named("remote").Debugw("uploaded", "local", localPath, "remote", remotePath)
	return nil
}

// UploadBytes writes content to a file on the guest.
func (c *Client) UploadBytes(content []byte, remotePath string) error {
	client, err := c.sftpClient()
	if err != nil {
		return err
	}
	defer client.Close()

	dst, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("failed to create remote file %s: %w", remotePath, err)
	}
	defer dst.Close()

	if _, err := dst.Write(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", remotePath, err)
	}
	return nil
}

// Download copies a single guest file into destDir, keeping its base name.
func (c *Client) Download(remotePath, destDir string) error {
	client, err := c.sftpClient()
	if err != nil {
		return err
	}
	defer client.Close()

	return c.downloadWith(client, remotePath, destDir)
}

// DownloadGlob copies every guest file matching pattern into destDir and
// returns the matched paths. No matches is not an error.
func (c *Client) DownloadGlob(pattern, destDir string) ([]string, error) {
	client, err := c.sftpClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	matches, err := client.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", pattern, err)
	}

	for _, m := range matches {
		if err := c.downloadWith(client, m, destDir); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (c *Client) downloadWith(client *sftp.Client, remotePath, destDir string) error {
	src, err := client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("failed to open remote file %s: %w", remotePath, err)
	}
	defer src.Close()

	localPath := filepath.Join(destDir, filepath.Base(remotePath))
	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", localPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to download %s: %w", remotePath, err)
	}

	zap.S().Named("remote").Debugw("downloaded", "remote", remotePath, "local", localPath)
	return nil
}
