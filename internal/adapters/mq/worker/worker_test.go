package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/demandrank/internal/adapters/mq/queue"
	worker "github.com/okian/demandrank/internal/adapters/mq/worker"
	"github.com/okian/demandrank/internal/domain/model"
	"github.com/okian/demandrank/internal/domain/scoring"
	"github.com/okian/demandrank/internal/domain/table"
	logging "github.com/okian/demandrank/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	jobs chan queue.Job
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job {
	return mq.jobs
}

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.jobs) })
	return nil
}

var orderTable = table.New([][]string{
	{"Date", "Product", "Total Orders"},
	{"2022-05-25", "Mug", "3"},
})

type mockLoader struct {
	mu     sync.Mutex
	errs   map[string]error
	panics map[string]bool
	loaded []string
}

func newMockLoader() *mockLoader {
	return &mockLoader{errs: make(map[string]error), panics: make(map[string]bool)}
}

func (ml *mockLoader) Load(ctx context.Context, path string) (*table.Table, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.loaded = append(ml.loaded, path)
	if ml.panics[path] {
		panic("corrupt workbook")
	}
	if err, ok := ml.errs[path]; ok {
		return nil, err
	}
	return orderTable, nil
}

type mockRanker struct {
	err error
}

func (mr *mockRanker) ScoreTable(ctx context.Context, tbl *table.Table) (scoring.Ranking, error) {
	if mr.err != nil {
		return scoring.Ranking{}, mr.err
	}
	return scoring.Ranking{
		Products:     []model.ScoredProduct{{Product: "Mug", Rank: 1, Score: 10, Top7: 3}},
		RowsRead:     tbl.Len(),
		RowsInWindow: tbl.Len(),
	}, nil
}

func await(t *testing.T, j queue.Job) queue.Result {
	t.Helper()
	select {
	case r := <-j.Reply:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("no reply for job %s", j.ID)
		return queue.Result{}
	}
}

func newJob(id string) queue.Job {
	return queue.NewJob(context.Background(), id, "/uploads/"+id+".xlsx", id+".xlsx")
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		loader := newMockLoader()
		ranker := &mockRanker{}

		convey.Convey("When creating a worker with default options", func() {
			w := worker.NewInMemoryWorker(q, loader, ranker)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			w := worker.NewInMemoryWorker(q, loader, ranker, worker.WithName("test-worker"))
			go w.Run(ctx)

			convey.Convey("And when a job is queued", func() {
				job := newJob("ok")
				q.jobs <- job
				res := await(t, job)

				convey.Convey("Then it replies with the ranking", func() {
					convey.So(res.Err, convey.ShouldBeNil)
					convey.So(res.Ranking.Products[0].Product, convey.ShouldEqual, "Mug")
					convey.So(res.Ranking.RowsRead, convey.ShouldEqual, 1)
				})
			})

			convey.Convey("And when loading fails", func() {
				loader.errs["/uploads/bad.xlsx"] = errors.New("not a zip file")
				job := newJob("bad")
				q.jobs <- job
				res := await(t, job)

				convey.Convey("Then it is an unreadable-file validation error naming the file", func() {
					var verr *scoring.ValidationError
					convey.So(errors.As(res.Err, &verr), convey.ShouldBeTrue)
					convey.So(errors.Is(res.Err, scoring.ErrUnreadable), convey.ShouldBeTrue)
					convey.So(scoring.KindName(res.Err), convey.ShouldEqual, "read")
					convey.So(res.Err.Error(), convey.ShouldStartWith, "error processing data: ")
					convey.So(res.Err.Error(), convey.ShouldContainSubstring, "bad.xlsx")
					convey.So(res.Err.Error(), convey.ShouldContainSubstring, "not a zip file")
				})
			})

			convey.Convey("And when loading is cancelled", func() {
				loader.errs["/uploads/late.xlsx"] = context.DeadlineExceeded
				job := newJob("late")
				q.jobs <- job
				res := await(t, job)

				convey.Convey("Then the error is not blamed on the file", func() {
					var verr *scoring.ValidationError
					convey.So(errors.As(res.Err, &verr), convey.ShouldBeFalse)
					convey.So(errors.Is(res.Err, context.DeadlineExceeded), convey.ShouldBeTrue)
				})
			})

			convey.Convey("And when loading panics", func() {
				loader.panics["/uploads/boom.xlsx"] = true
				job := newJob("boom")
				q.jobs <- job
				res := await(t, job)

				convey.Convey("Then the panic becomes an error and the worker keeps running", func() {
					convey.So(errors.Is(res.Err, worker.ErrPanic), convey.ShouldBeTrue)
					convey.So(errors.Is(res.Err, scoring.ErrUnreadable), convey.ShouldBeTrue)

					next := newJob("after")
					q.jobs <- next
					convey.So(await(t, next).Err, convey.ShouldBeNil)
				})
			})

			convey.Convey("And when shutting down", func() {
				err := w.Shutdown(context.Background())

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When the ranker rejects the data", func() {
			ranker.err = &scoring.ValidationError{Kind: scoring.ErrEmptyWindow, Err: scoring.ErrEmptyWindow}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go worker.NewInMemoryWorker(q, loader, ranker).Run(ctx)

			job := newJob("empty")
			q.jobs <- job
			res := await(t, job)

			convey.Convey("Then the validation error is passed through", func() {
				var verr *scoring.ValidationError
				convey.So(errors.As(res.Err, &verr), convey.ShouldBeTrue)
				convey.So(errors.Is(res.Err, scoring.ErrEmptyWindow), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the submitter already gave up", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go worker.NewInMemoryWorker(q, loader, ranker).Run(ctx)

			jobCtx, jobCancel := context.WithCancel(context.Background())
			jobCancel()
			job := queue.NewJob(jobCtx, "gone", "/uploads/gone.xlsx", "gone.xlsx")
			q.jobs <- job
			res := await(t, job)

			convey.Convey("Then the job is skipped", func() {
				convey.So(errors.Is(res.Err, context.Canceled), convey.ShouldBeTrue)
				loader.mu.Lock()
				defer loader.mu.Unlock()
				convey.So(loader.loaded, convey.ShouldNotContain, "/uploads/gone.xlsx")
			})
		})

		convey.Convey("When context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			w := worker.NewInMemoryWorker(q, loader, ranker)
			done := make(chan struct{})
			go func() {
				w.Run(ctx)
				close(done)
			}()
			cancel()

			convey.Convey("Then worker should stop", func() {
				stopped := false
				select {
				case <-done:
					stopped = true
				case <-time.After(time.Second):
				}
				convey.So(stopped, convey.ShouldBeTrue)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		loader := newMockLoader()
		ranker := &mockRanker{}

		convey.Convey("When creating a pool with default count", func() {
			pool := worker.NewPool(0, q, loader, ranker)

			convey.Convey("Then it has at least one worker", func() {
				convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When processing many concurrent jobs", func() {
			inmem := queue.NewInMemoryQueue(queue.WithCapacity(100))
			pool := worker.NewPool(4, inmem, loader, ranker, worker.WithJobTimeout(time.Second))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			jobs := make([]queue.Job, 40)
			for i := range jobs {
				jobs[i] = newJob(fmt.Sprintf("job-%d", i))
				convey.So(inmem.Enqueue(ctx, jobs[i]), convey.ShouldBeTrue)
			}

			convey.Convey("Then every job gets exactly one reply", func() {
				for _, j := range jobs {
					convey.So(await(t, j).Err, convey.ShouldBeNil)
				}
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(inmem.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When shutting down a started pool", func() {
			pool := worker.NewPool(2, q, loader, ranker)
			pool.Start(context.Background())

			convey.Convey("Then it should shutdown gracefully", func() {
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}
