package secretbin

import (
	"fmt"
	"sort"
)

// Expires is one server-offered expiration option. Instances come from the
// server's configuration and are never modified by the client.
type Expires struct {
	Count   int
	Unit    string // hr, d, w, m, y
	Seconds int64
}

// String renders the option for display, e.g. "1 hr (3600s)" or
// "2 hrs (7200s)".
func (e Expires) String() string {
	plural := ""
	if e.Count > 1 {
		plural = "s"
	}
	return fmt.Sprintf("%d %s%s (%ds)", e.Count, e.Unit, plural, e.Seconds)
}

// Banner is an announcement the server wants shown to users.
type Banner struct {
	Type string // info, warning, error
	Text string
}

// Config is the immutable snapshot of the server's metadata taken when the
// client was constructed. It is safe for concurrent reads; callers must not
// modify the Expires map.
type Config struct {
	Name           string
	Endpoint       string
	Version        string
	Banner         *Banner
	Expires        map[string]Expires
	DefaultExpires string
}

// ExpiresOption pairs an expiration id with its option.
type ExpiresOption struct {
	ID      string
	Expires Expires
}

// ExpiresSorted returns the offered options ordered by duration, shortest
// first. Ties break on the id so the order is deterministic.
func (c *Config) ExpiresSorted() []ExpiresOption {
	out := make([]ExpiresOption, 0, len(c.Expires))
	for id, e := range c.Expires {
		out = append(out, ExpiresOption{ID: id, Expires: e})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Expires.Seconds != out[j].Expires.Seconds {
			return out[i].Expires.Seconds < out[j].Expires.Seconds
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ExpireOptionsSorted returns the offered expiration ids ordered by
// duration, shortest first.
func (c *Config) ExpireOptionsSorted() []string {
	opts := c.ExpiresSorted()
	ids := make([]string, len(opts))
	for i, o := range opts {
		ids[i] = o.ID
	}
	return ids
}
