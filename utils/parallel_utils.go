package utils

import (
	"fmt"
	"sync"
)

type DynBuffer[T any] struct {
	cells []T
}

func NewDynBuffer[T any](capacity int) *DynBuffer[T] {
	return &DynBuffer[T]{cells: make([]T, 0, capacity)}
}

func (b *DynBuffer[T]) Add(v T)    { b.cells = append(b.cells, v) }
func (b *DynBuffer[T]) Cells() []T { return b.cells }
func (b *DynBuffer[T]) Reset()     { b.cells = b.cells[:0] }

type MailBox[T any] struct {
	NP           int
	MessageChans []chan []T              // One for each thread
	PostMsgQs    []map[int]*DynBuffer[T] // One for each thread, key is target thread
	ReceiveMsgQs []*DynBuffer[T]         // One for each thread
	MailFlag     []bool                  // MyThread sender has messages in outbox
}

func NewMailBox[T any](NP int) *MailBox[T] {
	mb := &MailBox[T]{
		NP:           NP,
		MessageChans: make([]chan []T, NP),
		PostMsgQs:    make([]map[int]*DynBuffer[T], NP),
		ReceiveMsgQs: make([]*DynBuffer[T], NP),
		MailFlag:     make([]bool, NP),
	}
	for n := 0; n < NP; n++ {
		mb.MessageChans[n] = make(chan []T, NP) // Worst case is all-to-all
		mb.PostMsgQs[n] = make(map[int]*DynBuffer[T])
		mb.ReceiveMsgQs[n] = NewDynBuffer[T](0)
	}
	return mb
}

func (mb *MailBox[T]) PostMessage(myThread, targetThread int, msg T) {
	var (
		tgt    *DynBuffer[T]
		exists bool
	)
	if tgt, exists = mb.PostMsgQs[myThread][targetThread]; !exists {
		tgt = NewDynBuffer[T](0)
		mb.PostMsgQs[myThread][targetThread] = tgt
	}
	tgt.Add(msg)
	mb.MailFlag[myThread] = true
}

// PostMessageToAll posts msg to every thread, including myThread, so that
// a reduction over the received messages sees every contribution.
func (mb *MailBox[T]) PostMessageToAll(myThread int, msg T) {
	for k := 0; k < mb.NP; k++ {
		mb.PostMessage(myThread, k, msg)
	}
}

func (mb *MailBox[T]) DeliverMyMessages(myThread int) {
	if !mb.MailFlag[myThread] {
		return
	}
	for targetThread, msgBuffer := range mb.PostMsgQs[myThread] {
		if targetThread < 0 || targetThread > mb.NP-1 {
			panic(fmt.Sprintf("Target thread %d out of bounds", targetThread))
		}
		if len(msgBuffer.Cells()) == 0 {
			continue
		}
		// The receiver gets its own copy so the outbox can be reused right away
		msgs := make([]T, len(msgBuffer.Cells()))
		copy(msgs, msgBuffer.Cells())
		msgBuffer.Reset()
		mb.MessageChans[targetThread] <- msgs
	}
	mb.MailFlag[myThread] = false
}

// ReceiveMyMessages drains whatever has been delivered to myThread. Callers
// wait on a Barrier after DeliverMyMessages so that every sender has finished.
func (mb *MailBox[T]) ReceiveMyMessages(myThread int) {
	for {
		select {
		case msgs := <-mb.MessageChans[myThread]:
			for _, msg := range msgs {
				mb.ReceiveMsgQs[myThread].Add(msg)
			}
		default:
			return
		}
	}
}

func (mb *MailBox[T]) ClearMyMessages(myThread int) {
	mb.ReceiveMsgQs[myThread].Reset()
}

// Barrier is a reusable rendezvous for a fixed number of goroutines
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	n, waiting int
	generation uint64
}

func NewBarrier(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until n goroutines have called Wait for the current generation
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	gen := b.generation
	b.waiting++
	if b.waiting == b.n {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
}

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucket(kDim int) (bucketNum, min, max int) {
	_, bucketNum, min, max = pm.getBucketWithTryCount(kDim)
	return
}

func (pm *PartitionMap) getBucketWithTryCount(kDim int) (tryCount, bucketNum, min, max int) {
	if pm.MaxIndex == 0 || kDim < 0 || kDim >= pm.MaxIndex {
		return 0, -1, 0, 0
	}
	// Initial guess
	bucketNum = int(float64(pm.ParallelDegree*kDim) / float64(pm.MaxIndex))
	for !(pm.Partitions[bucketNum][0] <= kDim && pm.Partitions[bucketNum][1] > kDim) {
		if pm.Partitions[bucketNum][0] > kDim {
			bucketNum--
		} else {
			bucketNum++
		}
		if bucketNum == -1 || bucketNum == pm.ParallelDegree {
			return 0, -1, 0, 0
		}
		tryCount++
	}
	min, max = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into c.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}
