package work

// priorityQueue implements heap.Interface for work items.
// Higher priority items are popped first (max-heap by priority).
// For equal priority, earlier submissions are popped first (FIFO).
type priorityQueue []*Item

func (pq priorityQueue) Len() int { return len(pq) }

// Less reports whether item i should be popped before item j.
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].Priority != pq[j].Priority {
		return pq[i].Priority > pq[j].Priority
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].heapIndex = i
	pq[j].heapIndex = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*Item)
	item.heapIndex = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil      // avoid memory leak
	item.heapIndex = -1 // mark as removed
	*pq = old[:n-1]
	return item
}
