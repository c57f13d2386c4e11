package routingalgorithm

import (
	"errors"
)

type PriorityQueueNode struct {
	Rank float64
	Item int32
	seq  uint64 // urutan insert, buat tie-break FIFO kalau rank sama
}

// MinHeap binary heap priorityqueue. Node dengan rank sama di-pop sesuai urutan insert.
type MinHeap struct {
	heap    []PriorityQueueNode
	pos     map[int32]int
	counter uint64
}

func NewMinHeap() *MinHeap {
	return &MinHeap{
		heap: make([]PriorityQueueNode, 0),
		pos:  make(map[int32]int),
	}
}

func (h *MinHeap) parent(index int) int {
	return (index - 1) / 2
}

func (h *MinHeap) leftChild(index int) int {
	return 2*index + 1
}

func (h *MinHeap) rightChild(index int) int {
	return 2*index + 2
}

func (h *MinHeap) less(i, j int) bool {
	if h.heap[i].Rank != h.heap[j].Rank {
		return h.heap[i].Rank < h.heap[j].Rank
	}
	return h.heap[i].seq < h.heap[j].seq
}

func (h *MinHeap) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.pos[h.heap[i].Item] = i
	h.pos[h.heap[j].Item] = j
}

// heapifyUp check apakah parent dari index lebih besar kalau iya swap. O(logN).
func (h *MinHeap) heapifyUp(index int) {
	for index != 0 && h.less(index, h.parent(index)) {
		h.swap(index, h.parent(index))
		index = h.parent(index)
	}
}

// heapifyDown check apakah salah satu children dari index lebih kecil kalau iya swap. O(logN).
func (h *MinHeap) heapifyDown(index int) {
	for {
		smallest := index
		left := h.leftChild(index)
		right := h.rightChild(index)

		if left < len(h.heap) && h.less(left, smallest) {
			smallest = left
		}
		if right < len(h.heap) && h.less(right, smallest) {
			smallest = right
		}
		if smallest == index {
			return
		}
		h.swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap) isEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap) Size() int {
	return len(h.heap)
}

// Insert item baru. Item yang sudah ada di heap tidak boleh di-insert lagi.
func (h *MinHeap) Insert(item int32, rank float64) {
	h.heap = append(h.heap, PriorityQueueNode{Rank: rank, Item: item, seq: h.counter})
	h.counter++
	index := h.Size() - 1
	h.pos[item] = index
	h.heapifyUp(index)
}

// ExtractMin ambil nilai minimum (index 0) & pop dari heap. O(logN)
func (h *MinHeap) ExtractMin() (PriorityQueueNode, error) {
	if h.isEmpty() {
		return PriorityQueueNode{}, errors.New("heap is empty")
	}
	root := h.heap[0]
	last := h.Size() - 1
	h.swap(0, last)
	h.heap = h.heap[:last]
	delete(h.pos, root.Item)
	h.heapifyDown(0)
	return root, nil
}

// Contains true kalau item masih ada di heap (belum di-pop).
func (h *MinHeap) Contains(item int32) bool {
	_, ok := h.pos[item]
	return ok
}

// DecreaseKey update rank item yang masih ada di heap. Urutan insert tetap dipakai buat tie-break.
func (h *MinHeap) DecreaseKey(item int32, rank float64) error {
	index, ok := h.pos[item]
	if !ok {
		return errors.New("item not found in the heap")
	}
	if rank > h.heap[index].Rank {
		return errors.New("new rank is greater than current rank")
	}
	h.heap[index].Rank = rank
	h.heapifyUp(index)
	return nil
}
