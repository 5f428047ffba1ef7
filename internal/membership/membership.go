// Package membership classifies actor logins into the two cooperating
// sides of a pull request using a memoized membership oracle.
package membership

import (
	"context"
	"sync"
)

// Result is the oracle's tri-state answer to "is this login a confirmed
// member of the home organization".
type Result int

const (
	Indeterminate Result = iota
	Member
	NonMember
)

// Side is the binary party an actor belongs to.
type Side int

const (
	SideHome Side = iota
	SideForeign
)

func (s Side) String() string {
	if s == SideHome {
		return "home"
	}
	return "foreign"
}

// Oracle answers membership queries. Implementations should return
// Indeterminate (with or without an error) when membership cannot be
// established; errors are never fatal to classification.
type Oracle interface {
	CheckMembership(ctx context.Context, login string) (Result, error)
}

// Cache memoizes oracle results for one batch run. Confirmed results are
// never re-queried within the run; Indeterminate entries stay eligible
// for re-query since they may reflect a transient authorization gap.
// The mutex keeps the memoization contract intact should PR processing
// ever be parallelized.
type Cache struct {
	mu      sync.Mutex
	results map[string]Result
}

func NewCache() *Cache {
	return &Cache{results: make(map[string]Result)}
}

func (c *Cache) confirmed(login string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.results[login]
	if !ok || r == Indeterminate {
		return Indeterminate, false
	}
	return r, true
}

func (c *Cache) put(login string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[login] = r
}

// Classifier resolves a login to a side. The PR author is always home
// regardless of organizational membership; everyone else is home only
// when the oracle affirmatively confirms membership. Non-members and
// indeterminate lookups classify as foreign, biasing the verdict toward
// flagging the home side as owing a response.
type Classifier struct {
	oracle Oracle
	cache  *Cache
}

func NewClassifier(oracle Oracle, cache *Cache) *Classifier {
	return &Classifier{oracle: oracle, cache: cache}
}

func (c *Classifier) Classify(ctx context.Context, login, author string) Side {
	if login == author {
		return SideHome
	}
	if c.lookup(ctx, login) == Member {
		return SideHome
	}
	return SideForeign
}

func (c *Classifier) lookup(ctx context.Context, login string) Result {
	if r, ok := c.cache.confirmed(login); ok {
		return r
	}
	r, err := c.oracle.CheckMembership(ctx, login)
	if err != nil {
		r = Indeterminate
	}
	c.cache.put(login, r)
	return r
}
