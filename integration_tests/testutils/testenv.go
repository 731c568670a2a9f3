package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/Black-And-White-Club/bulk-auction/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// TestEnvironment holds the containers and connections an integration test uses.
type TestEnvironment struct {
	Ctx           context.Context
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	DB            *bun.DB
	DSN           string
	NatsURL       string
}

// NewTestEnvironment starts Postgres and, when withNats is set, NATS. All
// resources are released through t.Cleanup.
func NewTestEnvironment(t *testing.T, withNats bool) (*TestEnvironment, error) {
	t.Helper()
	ctx := context.Background()
	env := &TestEnvironment{Ctx: ctx}

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer
	env.DSN = dsn
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	if withNats {
		natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to setup nats container: %w", err)
		}
		env.NatsContainer = natsContainer
		env.NatsURL = natsURL
		t.Cleanup(func() { _ = natsContainer.Terminate(context.Background()) })
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	env.DB = bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = env.DB.Close() })

	if err := RunMigrations(ctx, env.DB, dsn); err != nil {
		return nil, err
	}
	return env, nil
}
