package filesystem

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

var errPoolClosed = errors.New("pool is closed")

// SFTPClientPool manages a fixed set of SFTP clients over a single SSH connection.
// It uses a channel-based semaphore so walks on different goroutines can share
// one SFTPFileSystem.
type SFTPClientPool struct {
	clients chan *sftp.Client
	size    int
	mu      sync.Mutex
	closed  bool
}

// NewSFTPClientPool opens size SFTP sessions on sshClient.
func NewSFTPClientPool(sshClient *ssh.Client, size int) (*SFTPClientPool, error) {
	return newSFTPClientPool(size, func() (*sftp.Client, error) {
		return sftp.NewClient(sshClient) //nolint:wrapcheck // wrapped below with the client index
	})
}

func newSFTPClientPool(size int, create func() (*sftp.Client, error)) (*SFTPClientPool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool size must be greater than 0, got %d", size) //nolint:err113 // validation error with actual value
	}

	pool := &SFTPClientPool{
		clients: make(chan *sftp.Client, size),
		size:    size,
	}

	for i := range size {
		client, err := create()
		if err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("failed to create client %d/%d: %w", i+1, size, err)
		}

		pool.clients <- client
	}

	return pool, nil
}

// Acquire retrieves a client from the pool, blocking until one is free.
// Returns an error if the pool is closed.
func (p *SFTPClientPool) Acquire() (*sftp.Client, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return nil, errPoolClosed
	}

	client, ok := <-p.clients
	if !ok {
		return nil, errPoolClosed
	}

	return client, nil
}

// Close closes the pool and every idle client in it. Clients still acquired
// are closed when they are released. Safe to call more than once.
// It does not close the SSH connection, which the pool doesn't own.
func (p *SFTPClientPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	var firstErr error

	for {
		select {
		case client := <-p.clients:
			if err := client.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		default:
			return firstErr
		}
	}
}

// Release returns a client to the pool, or closes it if the pool is closed.
func (p *SFTPClientPool) Release(client *sftp.Client) {
	if client == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = client.Close()
		return
	}

	p.clients <- client
}

// Size returns the number of clients the pool was created with.
func (p *SFTPClientPool) Size() int {
	return p.size
}
