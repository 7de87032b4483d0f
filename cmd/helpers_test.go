package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/eka-dev/ftracker/auth"
	"github.com/eka-dev/ftracker/client"
	"github.com/eka-dev/ftracker/config"
	"github.com/eka-dev/ftracker/db"
	"github.com/eka-dev/ftracker/internal/fakeapi"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "eka@example.com"
	testPassword = "secret1"
)

var fixedNow = time.Date(2025, time.November, 21, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	app     *app
	backend *fakeapi.Server
}

// newTestEnv wires an app against a fake backend and an in-memory database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := fakeapi.New()
	backend.Now = func() time.Time { return fixedNow }
	backend.AddUser("Eka", testEmail, testPassword)
	srv := backend.Start()
	t.Cleanup(srv.Close)

	gormDB, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL + "/"
	cfg.API.MaxAttempts = 1
	cfg.Display.Timezone = "UTC"

	store := auth.NewPersistentStore(db.NewTokenRepository(gormDB))
	api, err := client.New(client.Config{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        5 * time.Second,
		RefreshTimeout: 2 * time.Second,
		MaxAttempts:    cfg.API.MaxAttempts,
	}, store)
	require.NoError(t, err)

	a := &app{
		cfg:          cfg,
		db:           gormDB,
		store:        store,
		cache:        db.NewTransactionRepository(gormDB),
		api:          api,
		session:      auth.NewService(store, api.Auth),
		in:           strings.NewReader(""),
		readPassword: func() (string, error) { return testPassword, nil },
		now:          func() time.Time { return fixedNow },
	}
	return &testEnv{app: a, backend: backend}
}

// run executes the command line args and captures both output streams.
func (e *testEnv) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := createRootCmd(e.app)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	access, refresh := e.backend.IssueTokens(testEmail)
	require.NoError(t, e.app.store.Save(context.Background(), access, refresh))
}

// seed stores a month of sample data: two entries this month, two last month.
func (e *testEnv) seed() []string {
	return e.backend.Seed(testEmail,
		fakeapi.Transaction{Amount: 1_500_000, Type: "income", Description: "Salary", CreatedAt: time.Date(2025, 11, 20, 8, 30, 0, 0, time.UTC)},
		fakeapi.Transaction{Amount: 25_000, Type: "expanse", Description: "Lunch", CreatedAt: time.Date(2025, 11, 21, 5, 0, 0, 0, time.UTC)},
		fakeapi.Transaction{Amount: 1_000_000, Type: "income", Description: "Bonus", CreatedAt: time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)},
		fakeapi.Transaction{Amount: 50_000, Type: "expanse", Description: "Dinner", CreatedAt: time.Date(2025, 10, 12, 19, 0, 0, 0, time.UTC)},
	)
}
