//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, g, c, etc.)
package filesystem_test

import (
	"io/fs"
	"syscall"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/scanwalk/pkg/filesystem"
	"github.com/joe/scanwalk/pkg/scanwalk"
)

// TestMockFileSystem_ListsInInsertionOrder verifies children come back in the
// order they were added, with hints and inodes.
func TestMockFileSystem_ListsInInsertionOrder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	mock.AddFile("/r/zeta.txt", []byte("z"), time.Time{})
	mock.AddDir("/r/alpha")
	mock.AddSymlink("/r/link", "alpha")
	mock.AddNode("/r/sock", scanwalk.TypeSocket)

	records := listAll(g, mock, "/r")

	g.Expect(recordNames(records)).Should(Equal([]string{"zeta.txt", "alpha", "link", "sock"}))
	g.Expect(records[0].Type).Should(Equal(scanwalk.TypeRegular))
	g.Expect(records[1].Type).Should(Equal(scanwalk.TypeDirectory))
	g.Expect(records[2].Type).Should(Equal(scanwalk.TypeSymlink))
	g.Expect(records[3].Type).Should(Equal(scanwalk.TypeSocket))

	for _, record := range records {
		g.Expect(record.HasInode).Should(BeTrue())
		g.Expect(record.Inode).ShouldNot(BeZero())
	}

	g.Expect(mock.ListCalls("/r")).Should(Equal(1))
	g.Expect(mock.OpenHandles()).Should(Equal(0))
}

// TestMockFileSystem_Metadata verifies sizes, modes and symlink following.
func TestMockFileSystem_Metadata(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

	mock := filesystem.NewMockFileSystem()
	mock.AddFile("/r/data.bin", []byte("12345"), modTime)
	mock.AddSymlink("/r/alias", "data.bin")

	md, err := mock.Metadata("/r/data.bin", false)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(md.Size).Should(Equal(int64(5)))
	g.Expect(md.ModTime).Should(Equal(modTime))
	g.Expect(md.IsRegular()).Should(BeTrue())

	linkMd, err := mock.Metadata("/r/alias", false)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(linkMd.IsSymlink()).Should(BeTrue())
	g.Expect(linkMd.Inode).ShouldNot(Equal(md.Inode))

	targetMd, err := mock.Metadata("/r/alias", true)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(targetMd.Inode).Should(Equal(md.Inode))

	g.Expect(mock.MetadataCalls("/r/alias", false)).Should(Equal(1))
	g.Expect(mock.MetadataCalls("/r/alias", true)).Should(Equal(1))
	g.Expect(mock.TotalMetadataCalls()).Should(Equal(3))
}

// TestMockFileSystem_Errors verifies the errno each failure mode reports.
func TestMockFileSystem_Errors(t *testing.T) {
	t.Parallel()

	mock := filesystem.NewMockFileSystem()
	mock.AddFile("/r/file", nil, time.Time{})
	mock.AddSymlink("/r/loop", "loop")
	mock.AddSymlink("/r/dangling", "nowhere")
	mock.AddDir("/r/locked")
	mock.FailList("/r/locked", syscall.EACCES)

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{name: "list missing", call: listErr(mock, "/r/missing"), want: syscall.ENOENT},
		{name: "list file", call: listErr(mock, "/r/file"), want: syscall.ENOTDIR},
		{name: "list through file", call: listErr(mock, "/r/file/sub"), want: syscall.ENOTDIR},
		{name: "list injected", call: listErr(mock, "/r/locked"), want: syscall.EACCES},
		{name: "list loop", call: listErr(mock, "/r/loop"), want: syscall.ELOOP},
		{name: "stat dangling", call: statErr(mock, "/r/dangling", true), want: syscall.ENOENT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			err := tt.call()

			var pathErr *fs.PathError
			g.Expect(err).Should(BeAssignableToTypeOf(pathErr))
			g.Expect(err).Should(MatchError(tt.want))
		})
	}
}

// TestMockFileSystem_LstatDanglingSymlink verifies a dangling link can still
// be lstat'ed.
func TestMockFileSystem_LstatDanglingSymlink(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	mock.AddSymlink("/r/dangling", "nowhere")

	md, err := mock.Metadata("/r/dangling", false)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(md.IsSymlink()).Should(BeTrue())
}

// TestMockFileSystem_ListThroughSymlink verifies listing a directory symlink
// lists the target's children.
func TestMockFileSystem_ListThroughSymlink(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	mock.AddFile("/data/a", nil, time.Time{})
	mock.AddFile("/data/b", nil, time.Time{})
	mock.AddSymlink("/r/current", "/data")

	g.Expect(recordNames(listAll(g, mock, "/r/current"))).Should(Equal([]string{"a", "b"}))
}

// TestMockFileSystem_RemoveAndSetHint verifies the mid-walk helpers.
func TestMockFileSystem_RemoveAndSetHint(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	mock.AddFile("/r/keep", nil, time.Time{})
	mock.AddFile("/r/gone/child", nil, time.Time{})
	mock.SetHint("/r/keep", scanwalk.TypeUnknown)

	mock.Remove("/r/gone")

	records := listAll(g, mock, "/r")
	g.Expect(recordNames(records)).Should(Equal([]string{"keep"}))
	g.Expect(records[0].Type).Should(Equal(scanwalk.TypeUnknown))

	_, err := mock.Metadata("/r/gone/child", false)
	g.Expect(err).Should(MatchError(syscall.ENOENT))
}

// TestMockFileSystem_OpenHandles verifies open listings are tracked until
// closed, and double close is harmless.
func TestMockFileSystem_OpenHandles(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	mock.AddDir("/r/a")

	first, err := mock.ListDir("/r")
	g.Expect(err).ShouldNot(HaveOccurred())

	second, err := mock.ListDir("/r/a")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(mock.OpenHandles()).Should(Equal(2))

	g.Expect(first.Close()).Should(Succeed())
	g.Expect(first.Close()).Should(Succeed())
	g.Expect(mock.OpenHandles()).Should(Equal(1))

	_, ok := first.Next()
	g.Expect(ok).Should(BeFalse())

	g.Expect(second.Close()).Should(Succeed())
	g.Expect(mock.OpenHandles()).Should(Equal(0))
}

// TestMockFileSystem_JoinAndBase verifies path helpers don't clean.
func TestMockFileSystem_JoinAndBase(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()

	g.Expect(mock.Join("/r", "a")).Should(Equal("/r/a"))
	g.Expect(mock.Join("/r/", "a")).Should(Equal("/r/a"))
	g.Expect(mock.Join("/r/./x", "a")).Should(Equal("/r/./x/a"))
	g.Expect(mock.Base("/r/a.txt")).Should(Equal("a.txt"))
}

func listAll(g Gomega, src scanwalk.Source, p string) []scanwalk.Record {
	reader, err := src.ListDir(p)
	g.Expect(err).ShouldNot(HaveOccurred())

	defer reader.Close()

	var records []scanwalk.Record

	for {
		record, ok := reader.Next()
		if !ok {
			break
		}

		records = append(records, record)
	}

	g.Expect(reader.Err()).ShouldNot(HaveOccurred())

	return records
}

func listErr(src scanwalk.Source, p string) func() error {
	return func() error {
		reader, err := src.ListDir(p)
		if err == nil {
			_ = reader.Close()
		}

		return err
	}
}

func statErr(src scanwalk.Source, p string, follow bool) func() error {
	return func() error {
		_, err := src.Metadata(p, follow)
		return err
	}
}

func recordNames(records []scanwalk.Record) []string {
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Name)
	}

	return names
}
