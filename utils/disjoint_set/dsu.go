package disjoint_set

import (
	"sync"
)

// DSU represents a Disjoint Set Union data structure over integer class labels
type DSU = dsu

type dsu struct {
	root   []int
	rank   []int
	labels map[int]int
	lock   sync.RWMutex
}

// NewDSU creates a new, empty DSU.
func NewDSU() *dsu {
	return &dsu{
		root:   make([]int, 0),
		rank:   make([]int, 0),
		labels: make(map[int]int),
		lock:   sync.RWMutex{},
	}
}

// Add adds a new singleton set for label. Returns the index of the new set.
func (d *dsu) Add(label int) int {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.add(label)
}

// add adds a new set to the DSU. (internal, unlocked, caller must hold lock)
func (d *dsu) add(label int) int {
	d.root = append(d.root, len(d.root))
	d.rank = append(d.rank, 0)
	d.labels[label] = len(d.root) - 1
	return d.labels[label]
}

// find finds the root of the set (internal, unlocked - caller must hold lock)
func (d *dsu) find(x int) int {
	for d.root[x] != x {
		d.root[x] = d.root[d.root[x]] // Path halving
		x = d.root[x]
	}
	return x
}

// FindOrCreate finds the root of the set holding label, or adds it if it doesn't exist
func (d *dsu) FindOrCreate(label int) int {
	d.lock.Lock()
	defer d.lock.Unlock()

	idx, ok := d.labels[label]
	if !ok {
		return d.add(label)
	}

	return d.find(idx)
}

// Find returns the root index for label, or -1 if the label was never added
func (d *dsu) Find(label int) int {
	d.lock.Lock()
	defer d.lock.Unlock()

	idx, ok := d.labels[label]
	if !ok {
		return -1
	}
	return d.find(idx)
}

// Union merges two sets
func (d *dsu) Union(x int, y int) {
	d.lock.Lock()
	defer d.lock.Unlock()

	rootX := d.find(x)
	rootY := d.find(y)

	if rootX == rootY {
		return
	}

	if d.rank[rootX] > d.rank[rootY] {
		d.root[rootY] = rootX
	} else if d.rank[rootX] < d.rank[rootY] {
		d.root[rootX] = rootY
	} else {
		d.root[rootY] = rootX
		d.rank[rootX]++
	}
}

// Size returns the number of labels in the DSU
func (d *dsu) Size() int {
	d.lock.RLock()
	defer d.lock.RUnlock()

	return len(d.labels)
}
