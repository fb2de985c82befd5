// Copyright (c) 2023-2026 Shoal Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package heap provides a min-oriented priority queue over integer values.
package heap

import "container/heap"

// Item is an integer value ordered by Priority, lowest first.
type Item struct {
	Value    int
	Priority int
}

// PriorityQueue pops Items in ascending Priority order.
type PriorityQueue struct {
	items minQueue
}

// NewPriorityQueue creates a PriorityQueue seeded with items.
func NewPriorityQueue(items ...*Item) *PriorityQueue {
	q := minQueue(items)
	heap.Init(&q)
	return &PriorityQueue{q}
}

// Len returns the number of queued Items.
func (pq *PriorityQueue) Len() int { return len(pq.items) }

// Push adds item to the queue.
func (pq *PriorityQueue) Push(item *Item) {
	heap.Push(&pq.items, item)
}

// Pop removes and returns the Item with the lowest priority. Returns false
// if the queue is empty.
func (pq *PriorityQueue) Pop() (*Item, bool) {
	if len(pq.items) == 0 {
		return nil, false
	}
	return heap.Pop(&pq.items).(*Item), true
}

type minQueue []*Item

func (q minQueue) Len() int           { return len(q) }
func (q minQueue) Less(i, j int) bool { return q[i].Priority < q[j].Priority }
func (q minQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *minQueue) Push(x interface{}) {
	*q = append(*q, x.(*Item))
}

func (q *minQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
