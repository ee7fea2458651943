//go:build integration

package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Container wraps a started test container and its connection string.
type Container struct {
	Container testcontainers.Container
	URI       string
}

// Close terminates the container
func (c *Container) Close(ctx context.Context) error {
	if c.Container != nil {
		return c.Container.Terminate(ctx)
	}
	return nil
}

// StartPostgres starts a disposable postgres and returns a postgres:// URL.
func StartPostgres(ctx context.Context) (*Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "mpstock",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(60 * time.Second),
	}

	return start(ctx, req, "5432", func(host, port string) string {
		return fmt.Sprintf("postgres://test:test@%s:%s/mpstock?sslmode=disable", host, port)
	})
}

// StartRedis starts a disposable redis and returns a redis:// URL.
func StartRedis(ctx context.Context) (*Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        "redis:7.0",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections"),
			wait.ForListeningPort("6379/tcp"),
		).WithDeadline(30 * time.Second),
	}

	return start(ctx, req, "6379", func(host, port string) string {
		return fmt.Sprintf("redis://%s:%s", host, port)
	})
}

func start(ctx context.Context, req testcontainers.ContainerRequest, port string, uri func(host, port string) string) (*Container, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s container: %w", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get %s container host: %w", req.Image, err)
	}

	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get %s container port: %w", req.Image, err)
	}

	return &Container{Container: container, URI: uri(host, mapped.Port())}, nil
}
