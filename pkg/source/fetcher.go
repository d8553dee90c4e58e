package source

import "context"

// Fetcher materialises a repository on the local filesystem.
type Fetcher interface {
	Checkout(ctx context.Context, repo Repo) (*Checkout, error)
}

// Checkout is a materialised repository. Release must be called once the
// tree is no longer read.
type Checkout struct {
	Repo Repo
	Dir  string

	release func() error
}

// NewCheckout creates a Checkout whose Release calls release (may be nil).
func NewCheckout(repo Repo, dir string, release func() error) *Checkout {
	return &Checkout{Repo: repo, Dir: dir, release: release}
}

// Release frees the checkout. It is safe to call more than once.
func (c *Checkout) Release() error {
	if c == nil || c.release == nil {
		return nil
	}
	fn := c.release
	c.release = nil
	return fn()
}
