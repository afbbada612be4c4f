package testutil

import (
	"context"
	"testing"
	"time"

	"vnclub/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// TestDatabase represents a test database instance
type TestDatabase struct {
	Container *postgres.PostgresContainer
	DB        *database.DB
	URL       string
}

// SetupTestDatabase creates a new PostgreSQL test container and runs migrations
func SetupTestDatabase(t *testing.T) *TestDatabase {
	ctx := context.Background()

	// Generate unique labels for this test container
	testName := t.Name()
	timestamp := time.Now().Format("20060102-150405")
	labels := map[string]string{
		"test":      "vnclub-repository",
		"test-name": testName,
		"timestamp": timestamp,
		"cleanup":   "auto",
	}

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("vnclub_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(labels),
	)
	require.NoError(t, err)

	testDB := &TestDatabase{
		Container: postgresContainer,
	}

	t.Cleanup(func() {
		testDB.cleanup(t)
	})

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Run migrations before opening the pool
	err = database.RunMigrationsWithURL(connStr)
	require.NoError(t, err)

	db, err := database.NewConnection(ctx, connStr)
	require.NoError(t, err)

	testDB.DB = db
	testDB.URL = connStr

	return testDB
}

// cleanup closes the database connection and terminates the container
func (td *TestDatabase) cleanup(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Logf("Panic during container cleanup (recovered): %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if td.DB != nil {
		td.DB.Close()
	}

	if td.Container != nil {
		if err := td.Container.Terminate(ctx); err != nil {
			t.Logf("Warning: Failed to terminate test container: %v", err)
		}
	}
}
