package filesystem

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/sftp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

var errNoAuthMethods = errors.New("no SSH authentication methods available (tried SSH agent and default keys)")

// SFTPConnection holds an authenticated SSH connection to an SFTP host.
// SFTP sessions are opened on it by SFTPClientPool.
type SFTPConnection struct {
	sshClient *ssh.Client
	host      string
	port      int
	user      string
}

// Connect establishes an SSH connection and checks that it can open an SFTP
// session.
// It authenticates with the SSH agent and the default keys in ~/.ssh, and
// checks the host key against ~/.ssh/known_hosts when that file exists.
func Connect(host string, port int, user string, logger logrus.FieldLogger) (*SFTPConnection, error) {
	authMethods := getSSHAuthMethods(logger)
	if len(authMethods) == 0 {
		return nil, errNoAuthMethods
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback(logger),
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	logger.WithField("addr", addr).Debug("dialing SSH")

	sshClient, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("SSH connection failed: %w", err)
	}

	// Fail here, not on the first listing, when the host has no SFTP subsystem.
	probe, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, fmt.Errorf("SFTP session creation failed: %w", err)
	}

	_ = probe.Close()

	return &SFTPConnection{
		sshClient: sshClient,
		host:      host,
		port:      port,
		user:      user,
	}, nil
}

// Close closes the SSH connection and with it every SFTP session on it.
// Safe to call on a zero SFTPConnection.
func (c *SFTPConnection) Close() error {
	if c.sshClient == nil {
		return nil
	}

	return c.sshClient.Close() //nolint:wrapcheck // passthrough of the transport error
}

// SSHClient returns the underlying SSH connection, for opening more SFTP sessions.
func (c *SFTPConnection) SSHClient() *ssh.Client {
	return c.sshClient
}

// String returns user@host:port.
func (c *SFTPConnection) String() string {
	return fmt.Sprintf("%s@%s:%d", c.user, c.host, c.port)
}

// getSSHAuthMethods returns SSH authentication methods in priority order:
// 1. SSH agent
// 2. Default SSH keys
func getSSHAuthMethods(logger logrus.FieldLogger) []ssh.AuthMethod {
	var authMethods []ssh.AuthMethod

	if agentAuth := trySSHAgent(); agentAuth != nil {
		logger.Debug("using SSH agent")
		authMethods = append(authMethods, agentAuth)
	}

	keyAuths, err := tryDefaultSSHKeys()
	if err != nil {
		logger.WithError(err).Debug("no default SSH keys")
	}

	return append(authMethods, keyAuths...)
}

// hostKeyCallback verifies against ~/.ssh/known_hosts, or accepts any key
// (with a warning) when there is no known_hosts file to check against.
func hostKeyCallback(logger logrus.FieldLogger) ssh.HostKeyCallback {
	homeDir, err := os.UserHomeDir()
	if err == nil {
		callback, err := knownhosts.New(filepath.Join(homeDir, ".ssh", "known_hosts"))
		if err == nil {
			return callback
		}
	}

	logger.Warn("no usable known_hosts file; host key will not be verified")

	return ssh.InsecureIgnoreHostKey() //nolint:gosec // no known_hosts to verify against
}

// trySSHAgent attempts to connect to the SSH agent.
func trySSHAgent() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil
	}

	agentClient := agent.NewClient(conn)

	return ssh.PublicKeysCallback(agentClient.Signers)
}

// tryDefaultSSHKeys loads the unencrypted keys from the default locations.
func tryDefaultSSHKeys() ([]ssh.AuthMethod, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find home directory: %w", err)
	}

	sshDir := filepath.Join(homeDir, ".ssh")

	keyFiles := []string{
		filepath.Join(sshDir, "id_ed25519"),
		filepath.Join(sshDir, "id_rsa"),
		filepath.Join(sshDir, "id_ecdsa"),
	}

	var authMethods []ssh.AuthMethod

	for _, keyPath := range keyFiles {
		keyData, err := os.ReadFile(keyPath)
		if err != nil {
			continue
		}

		// Password-protected keys fail to parse and are skipped.
		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			continue
		}

		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}

	return authMethods, nil
}
