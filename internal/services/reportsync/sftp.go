// Package reportsync pushes the performance log to a remote store over SFTP.
// A failed push is reported once and never retried; the next session simply
// uploads the grown file again.
package reportsync

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

const dialTimeout = 15 * time.Second

// SFTPSync uploads files to a fixed remote directory.
type SFTPSync struct {
	addr      string
	user      string
	password  string
	remoteDir string
	logger    *zap.Logger
}

// Creds holds the SFTP endpoint and login.
type Creds struct {
	Addr     string
	User     string
	Password string
}

// CredsFromEnv reads SFTP_ADDR (host:port), SFTP_USER and SFTP_PASSWORD.
func CredsFromEnv() (Creds, error) {
	creds := Creds{
		Addr:     os.Getenv("SFTP_ADDR"),
		User:     os.Getenv("SFTP_USER"),
		Password: os.Getenv("SFTP_PASSWORD"),
	}
	if creds.Addr == "" || creds.User == "" || creds.Password == "" {
		return Creds{}, errors.New("SFTP_ADDR, SFTP_USER and SFTP_PASSWORD environment variables must be set")
	}
	return creds, nil
}

// NewSFTPSync returns a sync targeting remoteDir on the given server.
func NewSFTPSync(creds Creds, remoteDir string, logger *zap.Logger) *SFTPSync {
	return &SFTPSync{
		addr:      creds.Addr,
		user:      creds.User,
		password:  creds.Password,
		remoteDir: remoteDir,
		logger:    logger,
	}
}

// Push uploads localPath under its base name into the remote directory.
func (s *SFTPSync) Push(localPath string) error {
	conn, err := ssh.Dial("tcp", s.addr, &ssh.ClientConfig{
		User:            s.user,
		Auth:            []ssh.AuthMethod{ssh.Password(s.password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         dialTimeout,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to dial sftp server %s", s.addr)
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return errors.Wrap(err, "failed to start sftp session")
	}
	defer client.Close()

	src, err := os.Open(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", localPath)
	}
	defer src.Close()

	remotePath := path.Join(s.remoteDir, filepath.Base(localPath))
	dst, err := client.Create(remotePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create remote file %s", remotePath)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		return errors.Wrapf(err, "failed to upload %s", remotePath)
	}

	s.logger.Info("performance log uploaded",
		zap.String("remote", remotePath),
		zap.Int64("bytes", written))
	return nil
}
