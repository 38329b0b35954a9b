package git

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ZeroHash is the all-zero object ID git uses to mark an absent side of a
// ref update (branch creation or deletion).
const ZeroHash = "0000000000000000000000000000000000000000"

// RefUpdate is one line of the stdin git feeds a pre-push hook:
// <local-ref> <local-hash> <remote-ref> <remote-hash>.
type RefUpdate struct {
	LocalRef   string
	LocalHash  string
	RemoteRef  string
	RemoteHash string
}

// IsCreate reports whether the update creates the remote ref.
func (u RefUpdate) IsCreate() bool { return u.RemoteHash == ZeroHash }

// IsDelete reports whether the update deletes the remote ref.
func (u RefUpdate) IsDelete() bool { return u.LocalHash == ZeroHash }

// ParseRefUpdates reads pre-push stdin. Blank lines are skipped; anything
// that is not four whitespace-separated tokens is an error.
func ParseRefUpdates(r io.Reader) ([]RefUpdate, error) {
	var updates []RefUpdate
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("malformed ref update line: %q", line)
		}
		updates = append(updates, RefUpdate{
			LocalRef:   fields[0],
			LocalHash:  fields[1],
			RemoteRef:  fields[2],
			RemoteHash: fields[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ref updates: %w", err)
	}
	return updates, nil
}
