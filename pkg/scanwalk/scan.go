package scanwalk

import (
	"iter"
)

// Scanner iterates over the immediate children of one directory, in the order
// the Source lists them. It holds the directory handle open until the listing
// is exhausted, fails, or Close is called.
type Scanner struct {
	src    Source
	path   string
	reader DirReader
	err    error
	closed bool
}

// Scan opens path for listing. Failures to open (missing path, not a
// directory, permission denied) are returned here as a *PathError; no
// Scanner is created.
func Scan(src Source, path string) (*Scanner, error) {
	reader, err := src.ListDir(path)
	if err != nil {
		return nil, NewPathError("scandir", path, err)
	}

	return &Scanner{
		src:    src,
		path:   path,
		reader: reader,
	}, nil
}

// All returns the scan as a range-over-func sequence. Breaking out of the loop
// closes the directory handle. A listing failure is yielded once, as the last
// element, with a nil Entry.
func (s *Scanner) All() iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		defer s.Close()

		for {
			entry, ok := s.Next()
			if !ok {
				break
			}

			if !yield(entry, nil) {
				return
			}
		}

		if err := s.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Close releases the directory handle. It is safe to call more than once,
// and is done automatically when Next reaches the end of the listing.
func (s *Scanner) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true

	return s.reader.Close()
}

// Err returns the error that stopped the listing, if any.
// Check it after Next returns false.
func (s *Scanner) Err() error {
	return s.err
}

// Next returns the next child entry.
// Returns (nil, false) when done, on error, or after Close.
func (s *Scanner) Next() (*Entry, bool) {
	if s.closed {
		return nil, false
	}

	for {
		record, ok := s.reader.Next()
		if !ok {
			break
		}

		if record.Name == "." || record.Name == ".." {
			continue
		}

		return newScannedEntry(s.src, s.path, record), true
	}

	if err := s.reader.Err(); err != nil {
		s.err = NewPathError("scandir", s.path, err)
	}

	closeErr := s.Close()
	if s.err == nil && closeErr != nil {
		s.err = NewPathError("close", s.path, closeErr)
	}

	return nil, false
}

// Path returns the directory being listed.
func (s *Scanner) Path() string {
	return s.path
}
