package mail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return "redis://" + endpoint + "/0"
}

func TestRedisQueueRoundTrip(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	q := NewRedisQueue(client, "test:mail")
	require.NoError(t, q.Enqueue(ctx, VerificationMessage("ann@x.com", "123456")))
	require.NoError(t, q.Enqueue(ctx, VerificationMessage("bob@x.com", "654321")))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	m, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.Equal(t, "ann@x.com", m.To)
	require.Contains(t, m.Text, "123456")

	m, err = q.Dequeue(ctx)
	require.NoError(t, err)
	require.Equal(t, "bob@x.com", m.To)
}

func TestRedisQueueDequeueHonoursContext(t *testing.T) {
	url := startRedis(t)

	client, err := NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	q := NewRedisQueue(client, "test:empty")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = q.Dequeue(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, q.Close())
	require.ErrorIs(t, q.Enqueue(context.Background(), Message{}), ErrQueueClosed)
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	require.Error(t, err)
}
