// Command limscore runs the reconciliation engine's flows offline against an
// in-memory record registry seeded from JSON fixtures. It exists for local
// wiring and inspection; production deployments embed the core service behind
// their own transport.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"limscore/internal/core"
	"limscore/internal/infra/blob"
	persistencememory "limscore/internal/infra/persistence/memory"
	"limscore/internal/infra/persistence/postgres"
	"limscore/internal/infra/persistence/sqlite"
	"limscore/internal/infra/registry"
	"limscore/pkg/domain"
)

func main() {
	var (
		mode    = flag.String("mode", "package", "flow to run: package | ingest | review")
		archive = flag.String("archive", "", "path to a run archive zip (package mode)")
		runFile = flag.String("run", "", "path to a run metadata JSON file (ingest mode)")
		seed    = flag.String("seed", "", "path to a registry seed JSON file")
	)
	flag.Parse()

	if err := run(*mode, *archive, *runFile, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "limscore: %v\n", err)
		os.Exit(1)
	}
}

func run(mode, archivePath, runPath, seedPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	reg := registry.NewMemory()
	if seedPath != "" {
		if err := seedRegistry(reg, seedPath); err != nil {
			return fmt.Errorf("seed registry: %w", err)
		}
	}

	archives, err := blob.OpenFromEnv(ctx)
	if err != nil {
		return fmt.Errorf("open archive store: %w", err)
	}

	seen, closeSeen, err := openSeenStore(ctx)
	if err != nil {
		return fmt.Errorf("open processed-set store: %w", err)
	}
	defer closeSeen()

	svc := core.NewService(reg, seen, archives,
		core.WithLogger(slogAdapter{logger}),
		core.WithMetrics(core.NewExpvarMetricsRecorder("limscore")),
	)

	var report domain.RunReport
	switch mode {
	case "package":
		data, err := os.ReadFile(archivePath)
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}
		report, err = svc.PackageRun(ctx, data)
		if err != nil {
			return err
		}
	case "ingest":
		data, err := os.ReadFile(runPath)
		if err != nil {
			return fmt.Errorf("read run metadata: %w", err)
		}
		var run domain.RunMetadata
		if err := json.Unmarshal(data, &run); err != nil {
			return fmt.Errorf("decode run metadata: %w", err)
		}
		report, err = svc.IngestRun(ctx, run)
		if err != nil {
			return err
		}
	case "review":
		report, err = svc.ReviewProjects(ctx, core.NameSourceFunc(keepName))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// keepName is the default review naming policy: leave every project alone but
// still mark it processed.
func keepName(context.Context, domain.ProjectRecord) (string, bool, error) {
	return "", false, nil
}

// openSeenStore selects the processed-set backend from LIMSCORE_SEEN_DRIVER
// (memory, sqlite, postgres; default memory). The sqlite driver roots at
// LIMSCORE_SEEN_PATH, the postgres driver at LIMSCORE_SEEN_DSN.
func openSeenStore(ctx context.Context) (domain.SeenStore, func(), error) {
	switch driver := os.Getenv("LIMSCORE_SEEN_DRIVER"); driver {
	case "", "memory":
		return persistencememory.New(), func() {}, nil
	case "sqlite":
		store, err := sqlite.NewStore(os.Getenv("LIMSCORE_SEEN_PATH"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "postgres":
		store, err := postgres.NewStore(ctx, os.Getenv("LIMSCORE_SEEN_DSN"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown seen-store driver %q", driver)
	}
}

// registrySeed is the fixture shape accepted by -seed.
type registrySeed struct {
	Entities []domain.EntityRecord  `json:"entities"`
	Kits     []domain.ReagentKitRef `json:"kits"`
	Projects []domain.ProjectRecord `json:"projects"`
}

func seedRegistry(reg *registry.Memory, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var seed registrySeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return err
	}
	for _, e := range seed.Entities {
		reg.AddEntity(e)
	}
	for _, k := range seed.Kits {
		reg.AddKit(k)
	}
	for _, p := range seed.Projects {
		reg.AddProject(p)
	}
	return nil
}

// slogAdapter bridges the standard structured logger onto the service's
// logging surface.
type slogAdapter struct {
	l *slog.Logger
}

func (a slogAdapter) Debug(msg string, kv ...any) { a.l.Debug(msg, kv...) }
func (a slogAdapter) Info(msg string, kv ...any)  { a.l.Info(msg, kv...) }
func (a slogAdapter) Warn(msg string, kv ...any)  { a.l.Warn(msg, kv...) }
func (a slogAdapter) Error(msg string, kv ...any) { a.l.Error(msg, kv...) }
