package worker_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"employment-api/backend/internal/worker"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestJobQueue_Enqueue(t *testing.T) {
	client := setupRedis(t)
	queue := worker.NewJobQueue(client)

	err := queue.Enqueue(worker.DefaultQueue, worker.JobTypeWelcomeEmail, map[string]interface{}{
		"email": "alice@example.com",
	})
	require.NoError(t, err)

	size, err := queue.Size(worker.DefaultQueue)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	raw, err := client.LPop(context.Background(), worker.DefaultQueue).Result()
	require.NoError(t, err)

	var job worker.Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, worker.JobTypeWelcomeEmail, job.Type)
	assert.Equal(t, "alice@example.com", job.Payload["email"])
	assert.Equal(t, 3, job.MaxTries)
}

func TestJobQueue_EnqueueAt(t *testing.T) {
	client := setupRedis(t)
	queue := worker.NewJobQueue(client)

	processAt := time.Now().Add(time.Hour)
	err := queue.EnqueueAt(worker.DefaultQueue, worker.JobTypeTaskReminder, map[string]interface{}{
		"task_id": 7,
	}, processAt)
	require.NoError(t, err)

	raw, err := client.LPop(context.Background(), worker.DefaultQueue).Result()
	require.NoError(t, err)

	var job worker.Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.WithinDuration(t, processAt, job.ProcessAt, time.Second)
}

func TestJobQueue_NilQueueDropsJobs(t *testing.T) {
	var queue *worker.JobQueue

	assert.NoError(t, queue.Enqueue(worker.DefaultQueue, worker.JobTypeCleanup, nil))

	size, err := queue.Size(worker.DefaultQueue)
	assert.NoError(t, err)
	assert.Zero(t, size)
}

func TestJobQueue_NilClientYieldsNilQueue(t *testing.T) {
	assert.Nil(t, worker.NewJobQueue(nil))
}

func TestWorker_ProcessesJob(t *testing.T) {
	client := setupRedis(t)
	queue := worker.NewJobQueue(client)

	processed := make(chan *worker.Job, 1)
	w := worker.New(worker.Config{RedisClient: client})
	w.RegisterHandler(worker.JobTypeWelcomeEmail, func(ctx context.Context, job *worker.Job) error {
		processed <- job
		return nil
	})
	w.Start(1)
	defer w.Stop()

	require.NoError(t, queue.Enqueue(worker.DefaultQueue, worker.JobTypeWelcomeEmail, map[string]interface{}{
		"email": "bob@example.com",
	}))

	select {
	case job := <-processed:
		assert.Equal(t, "bob@example.com", job.Payload["email"])
	case <-time.After(10 * time.Second):
		t.Fatal("job was not processed in time")
	}
}

func TestWorker_RetriesFailedJob(t *testing.T) {
	client := setupRedis(t)
	queue := worker.NewJobQueue(client)

	// Drain only the default queue so the retried job stays visible.
	w := worker.New(worker.Config{RedisClient: client, Queues: []string{worker.DefaultQueue}})
	w.RegisterHandler(worker.JobTypeTaskReminder, func(ctx context.Context, job *worker.Job) error {
		return context.DeadlineExceeded
	})
	w.Start(1)
	defer w.Stop()

	require.NoError(t, queue.Enqueue(worker.DefaultQueue, worker.JobTypeTaskReminder, nil))

	require.Eventually(t, func() bool {
		n, err := client.LLen(context.Background(), worker.RetryQueue).Result()
		return err == nil && n == 1
	}, 10*time.Second, 50*time.Millisecond)

	raw, err := client.LPop(context.Background(), worker.RetryQueue).Result()
	require.NoError(t, err)

	var job worker.Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, 1, job.Attempts)
	assert.True(t, job.ProcessAt.After(time.Now()), "retried job must be deferred")
}

func TestWorker_MovesExhaustedJobToDeadQueue(t *testing.T) {
	client := setupRedis(t)

	// Push a job whose tries are already spent so one more failure is final.
	job := worker.Job{
		ID:       "dead-1",
		Type:     worker.JobTypeCleanup,
		Attempts: 2,
		MaxTries: 3,
	}
	jobData, err := json.Marshal(&job)
	require.NoError(t, err)
	require.NoError(t, client.RPush(context.Background(), worker.DefaultQueue, jobData).Err())

	w := worker.New(worker.Config{RedisClient: client, Queues: []string{worker.DefaultQueue}})
	w.RegisterHandler(worker.JobTypeCleanup, func(ctx context.Context, job *worker.Job) error {
		return context.DeadlineExceeded
	})
	w.Start(1)
	defer w.Stop()

	require.Eventually(t, func() bool {
		n, err := client.LLen(context.Background(), worker.DeadQueue).Result()
		return err == nil && n == 1
	}, 10*time.Second, 50*time.Millisecond)
}
