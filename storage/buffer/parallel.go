package buffer

import (
	"sync"
	"sync/atomic"

	"corebase/storage/disk"
	"corebase/storage/page"
)

// ParallelPool shards page ids across N Instances: every non-allocating
// call dispatches to instance = pageID mod len(instances); NewPage tries
// instances round-robin starting from an internal cursor, succeeding on
// the first instance that has a free frame.
type ParallelPool struct {
	instances []*Instance
	cursor    atomic.Uint32
}

// NewParallelPool builds numInstances shards of poolSize frames each, all
// backed by the same disk manager. Total capacity is
// numInstances*poolSize.
func NewParallelPool(poolSize, numInstances int, dm *disk.Manager) *ParallelPool {
	instances := make([]*Instance, numInstances)
	for i := range instances {
		instances[i] = NewInstance(poolSize, numInstances, i, dm)
	}
	return &ParallelPool{instances: instances}
}

func (p *ParallelPool) instanceFor(pageID int64) *Instance {
	n := int64(len(p.instances))
	idx := pageID % n
	if idx < 0 {
		idx += n
	}
	return p.instances[idx]
}

// NewPage starts at the round-robin cursor and tries each instance in
// order, advancing the cursor past the first success. Fails only if every
// instance refuses.
func (p *ParallelPool) NewPage() (*page.Page, error) {
	n := uint32(len(p.instances))
	start := p.cursor.Add(1) - 1

	var lastErr error
	for i := uint32(0); i < n; i++ {
		idx := (start + i) % n
		pg, err := p.instances[idx].NewPage()
		if err == nil {
			p.cursor.Store(idx + 1)
			return pg, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (p *ParallelPool) FetchPage(id int64) (*page.Page, error) {
	return p.instanceFor(id).FetchPage(id)
}

func (p *ParallelPool) UnpinPage(id int64, dirty bool) error {
	return p.instanceFor(id).UnpinPage(id, dirty)
}

func (p *ParallelPool) FlushPage(id int64) (bool, error) {
	return p.instanceFor(id).FlushPage(id)
}

func (p *ParallelPool) DeletePage(id int64) (bool, error) {
	return p.instanceFor(id).DeletePage(id)
}

// FlushAllPages flushes every instance's resident pages.
func (p *ParallelPool) FlushAllPages() error {
	var wg sync.WaitGroup
	errs := make([]error, len(p.instances))
	for i, inst := range p.instances {
		wg.Add(1)
		go func(i int, inst *Instance) {
			defer wg.Done()
			errs[i] = inst.FlushAllPages()
		}(i, inst)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stats aggregates occupancy across every shard.
func (p *ParallelPool) Stats() Stats {
	var total Stats
	for _, inst := range p.instances {
		s := inst.Stats()
		total.Resident += s.Resident
		total.Pinned += s.Pinned
		total.Dirty += s.Dirty
		total.Capacity += s.Capacity
	}
	return total
}

// NumInstances reports the shard count.
func (p *ParallelPool) NumInstances() int { return len(p.instances) }
