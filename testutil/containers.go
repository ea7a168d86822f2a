//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"trivia-api/config"
	"trivia-api/db"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// IsDockerAvailable checks if the Docker daemon is running and accessible.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// Postgres is a migrated database running in a container.
type Postgres struct {
	DB        *gorm.DB
	container testcontainers.Container
}

// StartPostgres runs postgres, connects through the production pool setup
// and creates the schema.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "trivia",
				"POSTGRES_PASSWORD": "trivia",
				"POSTGRES_DB":       "trivia",
			},
			// postgres restarts once after initdb, so the line appears twice
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	conn, err := db.Connect(config.DatabaseConfig{
		URL:              fmt.Sprintf("postgres://trivia:trivia@%s:%s/trivia?sslmode=disable", host, port.Port()),
		MaxOpenConns:     10,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnMaxIdleTime:  time.Minute,
		StatementTimeout: 10 * time.Second,
		LogLevel:         "silent",
	})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		_ = db.Close(conn)
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &Postgres{DB: conn, container: container}, nil
}

// Terminate closes the pool and removes the container.
func (p *Postgres) Terminate(ctx context.Context) error {
	_ = db.Close(p.DB)
	return p.container.Terminate(ctx)
}

// Redis is a redis server running in a container.
type Redis struct {
	Client    *redis.Client
	container testcontainers.Container
}

func StartRedis(ctx context.Context) (*Redis, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	client, err := db.ConnectRedis(config.RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return &Redis{Client: client, container: container}, nil
}

func (r *Redis) Terminate(ctx context.Context) error {
	_ = r.Client.Close()
	return r.container.Terminate(ctx)
}
