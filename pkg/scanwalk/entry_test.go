//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, g, c, etc.)
package scanwalk_test

import (
	"syscall"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/scanwalk/pkg/filesystem"
	"github.com/joe/scanwalk/pkg/scanwalk"
)

// TestEntry_HintAnswersTypeQuestions verifies conclusive hints never cost a
// metadata call.
func TestEntry_HintAnswersTypeQuestions(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := newEntryTree()
	entries := scanAll(g, mock, "/r")

	for _, entry := range entries {
		_, err := entry.IsDir(false)
		g.Expect(err).ShouldNot(HaveOccurred())
		_, err = entry.IsFile(false)
		g.Expect(err).ShouldNot(HaveOccurred())
		_, err = entry.IsSymlink()
		g.Expect(err).ShouldNot(HaveOccurred())
	}

	// Following a non-symlink is also answered by the hint.
	dir := entries[0]
	isDir, err := dir.IsDir(true)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(isDir).Should(BeTrue())

	g.Expect(mock.TotalMetadataCalls()).Should(Equal(0))
}

// TestEntry_FollowingSymlinkStatsOnce verifies a followed symlink is resolved
// with one cached stat, while no-follow questions stay on the hint.
func TestEntry_FollowingSymlinkStatsOnce(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := newEntryTree()
	link := findEntry(g, scanAll(g, mock, "/r"), "to-dir")

	for range 3 {
		isDir, err := link.IsDir(true)
		g.Expect(err).ShouldNot(HaveOccurred())
		g.Expect(isDir).Should(BeTrue())
	}

	g.Expect(mock.MetadataCalls("/r/to-dir", true)).Should(Equal(1))

	isDir, err := link.IsDir(false)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(isDir).Should(BeFalse())

	isLink, err := link.IsSymlink()
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(isLink).Should(BeTrue())

	isFile, err := link.IsFile(true)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(isFile).Should(BeFalse())

	g.Expect(mock.MetadataCalls("/r/to-dir", false)).Should(Equal(0))
	g.Expect(mock.MetadataCalls("/r/to-dir", true)).Should(Equal(1))
}

// TestEntry_FollowAndNoFollowCachedIndependently verifies both metadata
// flavours are fetched once each and describe different objects.
func TestEntry_FollowAndNoFollowCachedIndependently(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := newEntryTree()
	link := findEntry(g, scanAll(g, mock, "/r"), "to-file")

	for range 2 {
		lmd, err := link.Metadata(false)
		g.Expect(err).ShouldNot(HaveOccurred())
		g.Expect(lmd.IsSymlink()).Should(BeTrue())

		md, err := link.Metadata(true)
		g.Expect(err).ShouldNot(HaveOccurred())
		g.Expect(md.IsRegular()).Should(BeTrue())
		g.Expect(md.Size).Should(Equal(int64(5)))
	}

	g.Expect(mock.MetadataCalls("/r/to-file", false)).Should(Equal(1))
	g.Expect(mock.MetadataCalls("/r/to-file", true)).Should(Equal(1))
}

// TestEntry_UnknownHintFallsBackToMetadata verifies an unknown hint costs one
// no-follow metadata call shared by every type question.
func TestEntry_UnknownHintFallsBackToMetadata(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := newEntryTree()
	mock.SetHint("/r/file.txt", scanwalk.TypeUnknown)

	entry := findEntry(g, scanAll(g, mock, "/r"), "file.txt")
	g.Expect(entry.Hint()).Should(Equal(scanwalk.TypeUnknown))

	isFile, err := entry.IsFile(false)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(isFile).Should(BeTrue())

	isDir, err := entry.IsDir(false)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(isDir).Should(BeFalse())

	isLink, err := entry.IsSymlink()
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(isLink).Should(BeFalse())

	g.Expect(mock.MetadataCalls("/r/file.txt", false)).Should(Equal(1))
	g.Expect(mock.TotalMetadataCalls()).Should(Equal(1))
}

// TestEntry_TypeChecksAgreeWithMetadata verifies hint answers match what the
// metadata says, for every kind of object.
func TestEntry_TypeChecksAgreeWithMetadata(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"dir", "file.txt", "to-dir", "to-file", "sock", "dangling"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			hinted := findEntry(g, scanAll(g, newEntryTree(), "/r"), name)

			unhintedTree := newEntryTree()
			unhintedTree.SetHint("/r/"+name, scanwalk.TypeUnknown)
			unhinted := findEntry(g, scanAll(g, unhintedTree, "/r"), name)

			g.Expect(typeAnswers(g, hinted)).Should(Equal(typeAnswers(g, unhinted)))

			answers := typeAnswers(g, hinted)
			trueCount := 0

			for _, answer := range answers {
				if answer {
					trueCount++
				}
			}

			g.Expect(trueCount).Should(BeNumerically("<=", 1), "at most one of dir/file/symlink")
		})
	}
}

// TestEntry_DanglingSymlinkFollowFails verifies following a dangling link
// reports a not-found PathError naming the link.
func TestEntry_DanglingSymlinkFollowFails(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	entry := findEntry(g, scanAll(g, newEntryTree(), "/r"), "dangling")

	_, err := entry.IsDir(true)
	g.Expect(err).Should(MatchError(scanwalk.ErrNotFound))

	var pathErr *scanwalk.PathError
	g.Expect(err).Should(BeAssignableToTypeOf(pathErr))
	g.Expect(err.(*scanwalk.PathError).Op).Should(Equal("stat"))
	g.Expect(err.(*scanwalk.PathError).Path).Should(Equal("/r/dangling"))

	isLink, err := entry.IsSymlink()
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(isLink).Should(BeTrue())
}

// TestEntry_MetadataErrorsAreNotCached verifies a failed metadata call is
// retried on the next question.
func TestEntry_MetadataErrorsAreNotCached(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := newEntryTree()
	mock.FailMetadata("/r/file.txt", syscall.EACCES)

	entry := findEntry(g, scanAll(g, mock, "/r"), "file.txt")

	for range 2 {
		_, err := entry.Metadata(false)
		g.Expect(err).Should(MatchError(scanwalk.ErrPermission))
		g.Expect(err.(*scanwalk.PathError).Op).Should(Equal("lstat"))
	}

	g.Expect(mock.MetadataCalls("/r/file.txt", false)).Should(Equal(2))
}

// TestEntry_BarePath verifies entries built from a path keep it verbatim and
// resolve everything through metadata.
func TestEntry_BarePath(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := newEntryTree()
	entry := scanwalk.NewEntry(mock, "/r/file.txt")

	g.Expect(entry.Path()).Should(Equal("/r/file.txt"))
	g.Expect(entry.Name()).Should(Equal("file.txt"))
	g.Expect(entry.Hint()).Should(Equal(scanwalk.TypeUnknown))
	g.Expect(entry.Source()).Should(BeIdenticalTo(mock))

	isFile, err := entry.IsFile(false)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(isFile).Should(BeTrue())

	md, err := mock.Metadata("/r/file.txt", false)
	g.Expect(err).ShouldNot(HaveOccurred())

	inode, err := entry.Inode()
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(inode).Should(Equal(md.Inode))

	// One lstat answered both IsFile and Inode; the direct call above is the second.
	g.Expect(mock.MetadataCalls("/r/file.txt", false)).Should(Equal(2))
}

// TestEntry_InodeFromRecord verifies listed inodes need no metadata call.
func TestEntry_InodeFromRecord(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := newEntryTree()
	entry := findEntry(g, scanAll(g, mock, "/r"), "file.txt")

	inode, err := entry.Inode()
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(inode).ShouldNot(BeZero())
	g.Expect(mock.TotalMetadataCalls()).Should(Equal(0))

	md, err := entry.Metadata(false)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(md.Inode).Should(Equal(inode))
}

// TestEntry_NameAndPath verifies scanned entries join the parent and name.
func TestEntry_NameAndPath(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	entry := findEntry(g, scanAll(g, newEntryTree(), "/r/"), "file.txt")

	g.Expect(entry.Name()).Should(Equal("file.txt"))
	g.Expect(entry.Path()).Should(Equal("/r/file.txt"))
	g.Expect(entry.Hint()).Should(Equal(scanwalk.TypeRegular))
	g.Expect(entry.String()).Should(Equal(`<Entry "/r/file.txt">`))
}

// newEntryTree builds a directory holding one of each kind of object.
func newEntryTree() *filesystem.MockFileSystem {
	mock := filesystem.NewMockFileSystem()
	mock.AddDir("/r/dir")
	mock.AddFile("/r/file.txt", []byte("hello"), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	mock.AddSymlink("/r/to-dir", "dir")
	mock.AddSymlink("/r/to-file", "file.txt")
	mock.AddNode("/r/sock", scanwalk.TypeSocket)
	mock.AddSymlink("/r/dangling", "missing")

	return mock
}

// typeAnswers returns the no-follow IsDir, IsFile and IsSymlink answers.
func typeAnswers(g Gomega, entry *scanwalk.Entry) []bool {
	isDir, err := entry.IsDir(false)
	g.Expect(err).ShouldNot(HaveOccurred())

	isFile, err := entry.IsFile(false)
	g.Expect(err).ShouldNot(HaveOccurred())

	isLink, err := entry.IsSymlink()
	g.Expect(err).ShouldNot(HaveOccurred())

	return []bool{isDir, isFile, isLink}
}

func scanAll(g Gomega, src scanwalk.Source, p string) []*scanwalk.Entry {
	scanner, err := scanwalk.Scan(src, p)
	g.Expect(err).ShouldNot(HaveOccurred())

	var entries []*scanwalk.Entry

	for {
		entry, ok := scanner.Next()
		if !ok {
			break
		}

		entries = append(entries, entry)
	}

	g.Expect(scanner.Err()).ShouldNot(HaveOccurred())

	return entries
}

func findEntry(g Gomega, entries []*scanwalk.Entry, name string) *scanwalk.Entry {
	for _, entry := range entries {
		if entry.Name() == name {
			return entry
		}
	}

	g.Expect(name).Should(BeEmpty(), "entry not found")

	return nil
}
