package filesystem

import (
	iofs "io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joe/scanwalk/pkg/scanwalk"
)

// maxSymlinkHops bounds symlink resolution, like the kernel's ELOOP limit.
const maxSymlinkHops = 40

// MockFileSystem is an in-memory tree implementing scanwalk.Source for tests.
//
// Paths are slash-separated and absolute. Directories list their children in
// the order they were added. Every ListDir and Metadata call is counted, and
// failures can be injected per path.
type MockFileSystem struct {
	mu        sync.RWMutex
	nodes     map[string]*mockNode
	nextInode uint64

	listCalls     map[string]int
	metadataCalls map[metadataKey]int
	openHandles   int

	listFailures     map[string]error
	metadataFailures map[string]error
}

// metadataKey identifies one kind of metadata request.
type metadataKey struct {
	path   string
	follow bool
}

// mockNode is one object in the mock tree.
type mockNode struct {
	kind     scanwalk.TypeHint
	hint     *scanwalk.TypeHint // listing hint override
	inode    uint64
	size     int64
	perm     iofs.FileMode
	modTime  time.Time
	target   string   // symlinks only
	children []string // directories only, in insertion order
}

// NewMockFileSystem creates an empty tree containing only "/".
func NewMockFileSystem() *MockFileSystem {
	m := &MockFileSystem{
		nodes:            make(map[string]*mockNode),
		listCalls:        make(map[string]int),
		metadataCalls:    make(map[metadataKey]int),
		listFailures:     make(map[string]error),
		metadataFailures: make(map[string]error),
	}
	m.nodes["/"] = m.newNode(scanwalk.TypeDirectory, 0o755)

	return m
}

// AddDir adds a directory, creating missing parents.
func (m *MockFileSystem) AddDir(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mkdirAll(mockClean(p))
}

// AddFile adds a regular file, creating missing parents.
func (m *MockFileSystem) AddFile(p string, content []byte, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	node := m.newNode(scanwalk.TypeRegular, 0o644)
	node.size = int64(len(content))
	node.modTime = modTime
	m.insert(mockClean(p), node)
}

// AddNode adds an object of any other type (socket, fifo, device).
func (m *MockFileSystem) AddNode(p string, kind scanwalk.TypeHint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insert(mockClean(p), m.newNode(kind, 0o600))
}

// AddSymlink adds a symbolic link to target. A relative target is resolved
// against the link's directory.
func (m *MockFileSystem) AddSymlink(p, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	node := m.newNode(scanwalk.TypeSymlink, 0o777)
	node.target = target
	m.insert(mockClean(p), node)
}

// FailList makes every ListDir of p fail with err.
func (m *MockFileSystem) FailList(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listFailures[mockClean(p)] = err
}

// FailMetadata makes every Metadata call for p fail with err.
func (m *MockFileSystem) FailMetadata(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metadataFailures[mockClean(p)] = err
}

// Remove deletes p and everything beneath it, as if removed mid-walk.
func (m *MockFileSystem) Remove(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clean := mockClean(p)
	if clean == "/" {
		return
	}

	for key := range m.nodes {
		if key == clean || strings.HasPrefix(key, clean+"/") {
			delete(m.nodes, key)
		}
	}

	if parent, ok := m.nodes[path.Dir(clean)]; ok {
		name := path.Base(clean)
		for i, child := range parent.children {
			if child == name {
				parent.children = append(parent.children[:i:i], parent.children[i+1:]...)
				break
			}
		}
	}
}

// SetHint overrides the type hint that listings report for p, e.g. to
// TypeUnknown to mimic filesystems that don't fill in d_type.
func (m *MockFileSystem) SetHint(p string, hint scanwalk.TypeHint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if node, ok := m.nodes[mockClean(p)]; ok {
		node.hint = &hint
	}
}

// ListCalls returns how many times ListDir was called for p.
func (m *MockFileSystem) ListCalls(p string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.listCalls[mockClean(p)]
}

// MetadataCalls returns how many times Metadata was called for p with the given follow mode.
func (m *MockFileSystem) MetadataCalls(p string, followSymlinks bool) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.metadataCalls[metadataKey{path: mockClean(p), follow: followSymlinks}]
}

// TotalMetadataCalls returns the number of Metadata calls for any path.
func (m *MockFileSystem) TotalMetadataCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, n := range m.metadataCalls {
		total += n
	}

	return total
}

// OpenHandles returns the number of listings opened and not yet closed.
func (m *MockFileSystem) OpenHandles() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.openHandles
}

// Base returns the last element of p.
func (m *MockFileSystem) Base(p string) string {
	return path.Base(p)
}

// Join appends name to dir with a single slash, without cleaning.
func (m *MockFileSystem) Join(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}

	return dir + "/" + name
}

// ListDir opens a listing of p. Symlinks along the way are followed.
func (m *MockFileSystem) ListDir(p string) (scanwalk.DirReader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clean := mockClean(p)
	m.listCalls[clean]++

	if err, ok := m.listFailures[clean]; ok {
		return nil, &os.PathError{Op: "open", Path: p, Err: err}
	}

	resolved, node, err := m.resolve(clean, true, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: p, Err: err}
	}

	if node.kind != scanwalk.TypeDirectory {
		return nil, &os.PathError{Op: "open", Path: p, Err: syscall.ENOTDIR}
	}

	records := make([]scanwalk.Record, 0, len(node.children))
	for _, name := range node.children {
		child := m.nodes[path.Join(resolved, name)]

		hint := child.kind
		if child.hint != nil {
			hint = *child.hint
		}

		records = append(records, scanwalk.Record{
			Name:     name,
			Inode:    child.inode,
			HasInode: true,
			Type:     hint,
		})
	}

	m.openHandles++

	return &mockDirReader{fs: m, records: records, index: -1}, nil
}

// Metadata returns the metadata for p, following a final symlink when asked to.
func (m *MockFileSystem) Metadata(p string, followSymlinks bool) (scanwalk.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clean := mockClean(p)
	m.metadataCalls[metadataKey{path: clean, follow: followSymlinks}]++

	op := "lstat"
	if followSymlinks {
		op = "stat"
	}

	if err, ok := m.metadataFailures[clean]; ok {
		return scanwalk.Metadata{}, &os.PathError{Op: op, Path: p, Err: err}
	}

	_, node, err := m.resolve(clean, followSymlinks, 0)
	if err != nil {
		return scanwalk.Metadata{}, &os.PathError{Op: op, Path: p, Err: err}
	}

	return scanwalk.Metadata{
		Inode:      node.inode,
		Mode:       node.perm | modeBits(node.kind),
		Size:       node.size,
		ModTime:    node.modTime,
		AccessTime: node.modTime,
		ChangeTime: node.modTime,
		Links:      1,
	}, nil
}

// insert places node at p, creating parents; an existing node is replaced.
// Callers hold m.mu.
func (m *MockFileSystem) insert(p string, node *mockNode) {
	parentPath := path.Dir(p)
	parent := m.mkdirAll(parentPath)

	if _, exists := m.nodes[p]; !exists {
		parent.children = append(parent.children, path.Base(p))
	}

	m.nodes[p] = node
}

// mkdirAll returns the directory at p, creating it and its parents as needed.
// Callers hold m.mu.
func (m *MockFileSystem) mkdirAll(p string) *mockNode {
	if node, ok := m.nodes[p]; ok {
		return node
	}

	node := m.newNode(scanwalk.TypeDirectory, 0o755)
	m.insert(p, node)

	return node
}

func (m *MockFileSystem) newNode(kind scanwalk.TypeHint, perm iofs.FileMode) *mockNode {
	m.nextInode++

	return &mockNode{
		kind:    kind,
		inode:   m.nextInode,
		perm:    perm,
		modTime: time.Unix(0, 0),
	}
}

// resolve looks up p component by component, following symlinks in every
// directory component and in the final one when followFinal is set.
// It returns the resolved path and node. Callers hold m.mu.
func (m *MockFileSystem) resolve(p string, followFinal bool, hops int) (string, *mockNode, error) {
	if p == "/" {
		return "/", m.nodes["/"], nil
	}

	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	current := "/"

	var node *mockNode

	for i, part := range parts {
		next := path.Join(current, part)

		found, ok := m.nodes[next]
		if !ok {
			return "", nil, syscall.ENOENT
		}

		last := i == len(parts)-1
		if found.kind == scanwalk.TypeSymlink && (!last || followFinal) {
			if hops >= maxSymlinkHops {
				return "", nil, syscall.ELOOP
			}

			target := found.target
			if !path.IsAbs(target) {
				target = path.Join(current, target)
			}

			resolved, targetNode, err := m.resolve(path.Clean(target), true, hops+1)
			if err != nil {
				return "", nil, err
			}

			next, found = resolved, targetNode
		}

		if !last && found.kind != scanwalk.TypeDirectory {
			return "", nil, syscall.ENOTDIR
		}

		current, node = next, found
	}

	return current, node, nil
}

// mockDirReader iterates over a snapshot of one directory's records.
type mockDirReader struct {
	fs      *MockFileSystem
	records []scanwalk.Record
	index   int
	closed  bool
}

func (r *mockDirReader) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true

	r.fs.mu.Lock()
	r.fs.openHandles--
	r.fs.mu.Unlock()

	return nil
}

func (r *mockDirReader) Err() error {
	return nil
}

func (r *mockDirReader) Next() (scanwalk.Record, bool) {
	if r.closed {
		return scanwalk.Record{}, false
	}

	r.index++
	if r.index >= len(r.records) {
		return scanwalk.Record{}, false
	}

	return r.records[r.index], true
}

// mockClean makes p absolute and clean.
func mockClean(p string) string {
	return path.Join("/", p)
}

func modeBits(kind scanwalk.TypeHint) iofs.FileMode {
	switch kind {
	case scanwalk.TypeDirectory:
		return iofs.ModeDir
	case scanwalk.TypeSymlink:
		return iofs.ModeSymlink
	case scanwalk.TypeSocket:
		return iofs.ModeSocket
	case scanwalk.TypeFIFO:
		return iofs.ModeNamedPipe
	case scanwalk.TypeBlockDevice:
		return iofs.ModeDevice
	case scanwalk.TypeCharDevice:
		return iofs.ModeDevice | iofs.ModeCharDevice
	case scanwalk.TypeRegular, scanwalk.TypeUnknown:
		return 0
	default:
		return 0
	}
}
