package worker

import (
	"context"
	"sync"

	"github.com/thammystudio/studio-crm/pkg/logger"
)

type WorkerHandler = func(workerIndex int, job interface{})

// WorkerManager fans jobs out to a fixed pool of goroutines reading from one
// buffered channel.
type WorkerManager struct {
	numberOfWorker int
	jobChannel     chan interface{}
	do             WorkerHandler
	stop           chan struct{}
	stopOnce       sync.Once
	waiter         sync.WaitGroup
}

func NewWorkerManager(bufferSize, numberOfWorkers int) *WorkerManager {
	return &WorkerManager{
		numberOfWorker: numberOfWorkers,
		jobChannel:     make(chan interface{}, bufferSize),
		stop:           make(chan struct{}),
	}
}

func (w *WorkerManager) GetUnreadCount() int64 {
	return int64(len(w.jobChannel))
}

func (w *WorkerManager) SetWorker(worker WorkerHandler) {
	w.do = worker
}

// Enqueue hands a job to the pool. It blocks while the buffer is full and
// gives up once ctx is done or the pool has exited.
func (w *WorkerManager) Enqueue(ctx context.Context, val interface{}) bool {
	select {
	case <-w.stop:
		return false
	default:
	}
	select {
	case w.jobChannel <- val:
		return true
	case <-ctx.Done():
		return false
	case <-w.stop:
		return false
	}
}

// Start runs the workers and blocks until ctx is cancelled or Exit is called.
// Jobs still buffered at that point are dropped.
func (w *WorkerManager) Start(ctx context.Context) {
	w.waiter.Add(w.numberOfWorker)
	for i := 0; i < w.numberOfWorker; i++ {
		go func(index int) {
			defer w.waiter.Done()
			for {
				select {
				case job := <-w.jobChannel:
					w.do(index, job)
				case <-ctx.Done():
					return
				case <-w.stop:
					return
				}
			}
		}(i)
	}
	w.waiter.Wait()
}

func (w *WorkerManager) Exit() {
	w.stopOnce.Do(func() {
		logger.Info("worker manager is shutting down", "workers", w.numberOfWorker)
		close(w.stop)
	})
}
