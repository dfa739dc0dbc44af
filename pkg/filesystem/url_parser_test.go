//nolint:varnamelen // Test files use idiomatic short variable names (t, etc.)
package filesystem_test

import (
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/scanwalk/pkg/filesystem"
)

// TestParseLocation_Local tests ParseLocation with local filesystem paths.
func TestParseLocation_Local(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"/local/path", "relative/dir", ".", "C:\\Users\\me", "ftp://not-sftp/x"} {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			loc, err := filesystem.ParseLocation(input)
			g.Expect(err).ShouldNot(HaveOccurred())
			g.Expect(loc.IsRemote).Should(BeFalse())
			g.Expect(loc.Path).Should(Equal(input))
			g.Expect(loc.String()).Should(Equal(input))
		})
	}
}

// TestParseLocation_SFTP tests ParseLocation with SFTP URLs.
func TestParseLocation_SFTP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantErr  string
		wantUser string
		wantHost string
		wantPort int
		wantPath string
	}{
		{
			name:     "relative to home",
			input:    "sftp://joe@server.example.com/photos/2024",
			wantUser: "joe",
			wantHost: "server.example.com",
			wantPort: 22,
			wantPath: "photos/2024",
		},
		{
			name:     "absolute path",
			input:    "sftp://joe@server.example.com//srv/data",
			wantUser: "joe",
			wantHost: "server.example.com",
			wantPort: 22,
			wantPath: "/srv/data",
		},
		{
			name:     "custom port",
			input:    "sftp://admin@10.0.0.5:2222/backup",
			wantUser: "admin",
			wantHost: "10.0.0.5",
			wantPort: 2222,
			wantPath: "backup",
		},
		{
			name:     "home directory",
			input:    "sftp://joe@server",
			wantUser: "joe",
			wantHost: "server",
			wantPort: 22,
			wantPath: ".",
		},
		{
			name:     "home directory with slash",
			input:    "sftp://joe@server/",
			wantUser: "joe",
			wantHost: "server",
			wantPort: 22,
			wantPath: ".",
		},
		{
			name:     "ipv6 host",
			input:    "sftp://joe@[::1]:22/tmp",
			wantUser: "joe",
			wantHost: "::1",
			wantPort: 22,
			wantPath: "tmp",
		},
		{name: "missing user", input: "sftp://server/path", wantErr: "username"},
		{name: "missing host", input: "sftp://joe@/path", wantErr: "host"},
		{name: "bad port", input: "sftp://joe@server:notaport/path", wantErr: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			loc, err := filesystem.ParseLocation(tt.input)

			if tt.wantErr != "" {
				g.Expect(err).Should(HaveOccurred())
				g.Expect(err.Error()).Should(ContainSubstring(tt.wantErr))

				return
			}

			g.Expect(err).ShouldNot(HaveOccurred())
			g.Expect(loc.IsRemote).Should(BeTrue())
			g.Expect(loc.User).Should(Equal(tt.wantUser))
			g.Expect(loc.Host).Should(Equal(tt.wantHost))
			g.Expect(loc.Port).Should(Equal(tt.wantPort))
			g.Expect(loc.Path).Should(Equal(tt.wantPath))
		})
	}
}

// TestLocation_StringRoundTrips verifies String output parses back to the
// same location.
func TestLocation_StringRoundTrips(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	for _, input := range []string{
		"sftp://joe@server:2222//srv/data",
		"sftp://joe@server/relative",
		"sftp://joe@server",
	} {
		loc, err := filesystem.ParseLocation(input)
		g.Expect(err).ShouldNot(HaveOccurred())

		again, err := filesystem.ParseLocation(loc.String())
		g.Expect(err).ShouldNot(HaveOccurred())
		g.Expect(again).Should(Equal(loc), input)
	}
}
