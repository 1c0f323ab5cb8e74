package git

import (
	"context"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// Cloner fetches remote repositories with go-git. No retries: every
// transport, auth, or not-found failure surfaces immediately.
type Cloner struct {
	depth int
}

// NewCloner creates a Cloner. depth <= 0 means a full clone; a shallow
// depth is enough for analysis and much cheaper on large repos.
func NewCloner(depth int) *Cloner {
	return &Cloner{depth: depth}
}

func (c *Cloner) Clone(ctx context.Context, url, dest string) error {
	_, err := gogit.PlainCloneContext(ctx, dest, false, &gogit.CloneOptions{
		URL:          url,
		Depth:        c.depth,
		SingleBranch: true,
		Tags:         gogit.NoTags,
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	return nil
}
