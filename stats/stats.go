// Package stats provides the progress reporter and the Prometheus metrics
// of a pipeline run.
package stats

import (
	"sync"
	"time"

	"github.com/omniscale/osmdoc/log"
)

type counter struct {
	nodes      int64
	ways       int64
	relations  int64
	docs       int64
	lastReport time.Time
	lastNodes  int64
	lastWays   int64
	lastRels   int64
	lastDocs   int64
}

// Statistics collects the element counts of a run and logs the progress
// once per interval.
type Statistics struct {
	nodes     chan int
	ways      chan int
	relations chan int
	docs      chan int
	done      chan struct{}
	wg        sync.WaitGroup
}

func (s *Statistics) AddNodes(n int)     { s.nodes <- n }
func (s *Statistics) AddWays(n int)      { s.ways <- n }
func (s *Statistics) AddRelations(n int) { s.relations <- n }
func (s *Statistics) AddDocuments(n int) { s.docs <- n }

// AddElement counts one element of kind. Other kinds are ignored.
func (s *Statistics) AddElement(kind string) {
	switch kind {
	case "node":
		s.AddNodes(1)
	case "way":
		s.AddWays(1)
	case "relation":
		s.AddRelations(1)
	}
}

// Stop logs the final counts and stops the reporter.
func (s *Statistics) Stop() {
	close(s.done)
	s.wg.Wait()
}

// StatsReporter starts a reporter that logs every interval.
func StatsReporter(interval time.Duration) *Statistics {
	c := counter{lastReport: time.Now()}
	s := &Statistics{
		nodes:     make(chan int),
		ways:      make(chan int),
		relations: make(chan int),
		docs:      make(chan int),
		done:      make(chan struct{}),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case n := <-s.nodes:
				c.nodes += int64(n)
			case n := <-s.ways:
				c.ways += int64(n)
			case n := <-s.relations:
				c.relations += int64(n)
			case n := <-s.docs:
				c.docs += int64(n)
			case <-tick.C:
				c.Print()
			case <-s.done:
				c.Print()
				return
			}
		}
	}()
	return s
}

func (c *counter) Print() {
	dur := time.Since(c.lastReport).Seconds()
	if dur <= 0 {
		dur = 1
	}
	rate := func(cur, last int64) int64 {
		return int64(float64(cur-last) / dur)
	}
	log.Printf("[progress] Nodes: %7d/s (%9d) Ways: %7d/s (%8d) Relations: %6d/s (%7d) Documents: %7d/s (%9d)",
		rate(c.nodes, c.lastNodes), c.nodes,
		rate(c.ways, c.lastWays), c.ways,
		rate(c.relations, c.lastRels), c.relations,
		rate(c.docs, c.lastDocs), c.docs,
	)
	c.lastNodes = c.nodes
	c.lastWays = c.ways
	c.lastRels = c.relations
	c.lastDocs = c.docs
	c.lastReport = time.Now()
}
