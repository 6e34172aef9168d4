package gtfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tripplanner.dev/gtfs/model"
	"tripplanner.dev/gtfs/testutil"
)

// Clock that only moves when told to.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Registry of sources served by server, one per id, at /{id}.zip.
func testRegistry(t *testing.T, server *testutil.FeedServer, ids ...string) *Registry {
	sources := []model.Source{}
	for _, id := range ids {
		sources = append(sources, model.Source{
			ID:   id,
			Name: "Source " + id,
			URL:  server.URL("/" + id + ".zip"),
		})
	}

	r, err := NewRegistry(sources)
	require.NoError(t, err)
	return r
}

func testCache(t *testing.T, server *testutil.FeedServer, ids ...string) (*StaticCache, *testClock) {
	clock := &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	c := NewStaticCache(testRegistry(t, server, ids...))
	c.TimeNow = clock.Now

	return c, clock
}
