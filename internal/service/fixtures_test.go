package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/draymottishaw/college-assisted-explorer/internal/cache"
	"github.com/draymottishaw/college-assisted-explorer/internal/dataset"
	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

type rowSpec struct {
	name, role, year string
	first, last      int
	height           float64
	counts           metrics.Counts
}

func (s rowSpec) build() metrics.CareerRow {
	r := metrics.CareerRow{
		Key:         metrics.NewPlayerKey(s.name),
		Player:      s.name,
		Team:        "State",
		FirstSeason: s.first,
		LastSeason:  s.last,
		Counts:      s.counts,
		Role:        metrics.TextOf(s.role),
		Year:        metrics.TextOf(s.year),
		Height:      metrics.Missing(),
	}
	if s.height > 0 {
		r.Height = metrics.Of(s.height)
	}
	r.Recompute()
	return r
}

func build(specs ...rowSpec) []metrics.CareerRow {
	out := make([]metrics.CareerRow, len(specs))
	for i, s := range specs {
		out[i] = s.build()
	}
	return out
}

var (
	// Total_Assisted% 0.65, Total_Att 140, Three_FG% 0.375
	alpha = rowSpec{name: "Alpha Guard", role: "Guard", year: "Jr", first: 2018, last: 2020, height: 75,
		counts: metrics.Counts{RimMade: 20, RimMiss: 20, RimAst: 10, MidMade: 10, MidMiss: 10, MidAst: 5, ThreeMade: 30, ThreeMiss: 50, ThreeAst: 24}}
	// Total_Assisted% 49/65, Total_Att 97, Three_FG% 0, Three_Assisted% missing
	bravo = rowSpec{name: "Bravo Big", role: "Big", year: "Fr", first: 2015, last: 2016, height: 83,
		counts: metrics.Counts{RimMade: 60, RimMiss: 20, RimAst: 45, MidMade: 5, MidMiss: 10, MidAst: 4, ThreeMiss: 2}}
	// Total_Assisted% 28/43, Total_Att 100, Three_FG% 0.4
	charlie = rowSpec{name: "Charlie Wing", role: "Wing", first: 2021, last: 2023, height: 79,
		counts: metrics.Counts{RimMade: 15, RimMiss: 15, RimAst: 6, MidMade: 8, MidMiss: 12, MidAst: 4, ThreeMade: 20, ThreeMiss: 30, ThreeAst: 18}}
	// every ratio missing
	delta = rowSpec{name: "Delta Nomad", year: "Sr", first: 2012, last: 2013}
	// Total_Assisted% 7/30, Total_Att 70, Three_FG% 1/3
	echo = rowSpec{name: "Echo Guard", role: "Guard", year: "So", first: 2022, last: 2023, height: 74,
		counts: metrics.Counts{RimMade: 10, RimMiss: 10, RimAst: 2, MidMade: 10, MidMiss: 10, MidAst: 2, ThreeMade: 10, ThreeMiss: 20, ThreeAst: 3}}

	fresh = rowSpec{name: "Fresh Prospect", role: "Guard", year: "Fr", first: 2026, last: 2026, height: 75,
		counts: metrics.Counts{RimMade: 18, RimMiss: 20, RimAst: 9, MidMade: 9, MidMiss: 10, MidAst: 4, ThreeMade: 28, ThreeMiss: 50, ThreeAst: 22}}
	walkOn = rowSpec{name: "Foxtrot Walkon", role: "Wing", year: "Sr", first: 2014, last: 2017, height: 77,
		counts: metrics.Counts{RimMade: 5, RimMiss: 5, MidMade: 2, MidMiss: 8, ThreeMade: 4, ThreeMiss: 12, ThreeAst: 4}}
)

func testHolder() *dataset.Holder {
	career := build(alpha, bravo, charlie, delta, echo)
	current := build(fresh)
	all := build(alpha, bravo, charlie, delta, echo, fresh, walkOn)
	return dataset.NewHolder(dataset.NewSnapshot(career, current, all))
}

func names(rows []ExplorerRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Player
	}
	return out
}

// memoryCache is an in-process Cache.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
	flushes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dst interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	c.hits++
	return json.Unmarshal(data, dst)
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Flush(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string][]byte)
	c.flushes++
	return n, nil
}
