// Command evacsim runs the evacuation crowd simulation, either headless to
// completion or as a live server with an HTTP API and websocket observers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/evacsim/internal/agents"
	"github.com/talgya/evacsim/internal/api"
	"github.com/talgya/evacsim/internal/engine"
	"github.com/talgya/evacsim/internal/entropy"
	"github.com/talgya/evacsim/internal/hazard"
	"github.com/talgya/evacsim/internal/nav"
	"github.com/talgya/evacsim/internal/persistence"
	"github.com/talgya/evacsim/internal/render"
	"github.com/talgya/evacsim/internal/tuning"
)

func main() {
	var (
		configPath  = flag.String("config", "configs/evacsim.yaml", "tuning file (empty = built-in defaults)")
		catalogPath = flag.String("catalog", "", "SQLite catalog of layouts and profile sets")
		layoutName  = flag.String("layout", "", "layout to load from the catalog")
		profileSet  = flag.String("profiles", "", "profile set to load from the catalog")
		scenario    = flag.String("scenario", "", "scenario to start: fire, earthquake, active_shooter")
		headless    = flag.Bool("headless", false, "run the scenario to completion without serving")
		maxTicks    = flag.Int("max-ticks", 100000, "headless tick limit")
		seedFlag    = flag.Int64("seed", 0, "random seed (0 = tuning seed, then random)")
		assetsDir   = flag.String("assets", "", "directory of <model>.glb assets; missing models run headless")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Tuning ────────────────────────────────────────────────────────
	t := tuning.Default()
	if *configPath != "" {
		var err error
		t, err = tuning.Load(*configPath)
		if err != nil {
			slog.Error("failed to load tuning", "path", *configPath, "error", err)
			os.Exit(1)
		}
		slog.Info("tuning loaded", "path", *configPath)
	}

	// ── Catalog ───────────────────────────────────────────────────────
	if *catalogPath != "" {
		if err := applyCatalog(&t, *catalogPath, *layoutName, *profileSet); err != nil {
			slog.Error("catalog lookup failed", "path", *catalogPath, "error", err)
			os.Exit(1)
		}
	} else if *layoutName != "" || *profileSet != "" {
		slog.Error("-layout and -profiles need -catalog")
		os.Exit(2)
	}

	seed := *seedFlag
	if seed == 0 {
		seed = t.Seed
	}
	if seed == 0 {
		rng := entropy.NewClient(os.Getenv("EVACSIM_RANDOM_ORG_KEY"))
		seed = rng.Seed(ctx)
		slog.Info("seed drawn", "seed", seed, "random_org", rng.Enabled())
	}

	cfg, err := t.DirectorConfig()
	if err != nil {
		slog.Error("invalid tuning", "error", err)
		os.Exit(1)
	}

	var kind engine.ScenarioKind
	if *scenario != "" {
		kind, err = engine.ParseScenario(*scenario)
		if err != nil {
			slog.Error("bad -scenario", "error", err)
			os.Exit(2)
		}
	} else if *headless {
		slog.Error("-headless needs -scenario")
		os.Exit(2)
	}

	// ── Population ────────────────────────────────────────────────────
	spawner := agents.NewSpawner(seed)
	if *assetsDir != "" {
		spawner.Assets = assetCheck(*assetsDir)
	}
	population := spawner.Spawn(t.Profiles, t.Population(), t.Building.Floor)

	var pathfinder nav.Pathfinder = nav.Direct{}
	if t.NavCell > 0 {
		g := nav.NewGrid(t.NavCell)
		g.AddBuilding(t.Building)
		pathfinder = g
	}
	deps := engine.Deps{
		Pathfinder: pathfinder,
		Effects:    hazard.NewFire(seed, t.FireRadius),
		Seed:       seed,
	}

	if *headless {
		os.Exit(runHeadless(ctx, cfg, t, population, deps, kind, *maxTicks))
	}

	// ── Live server ───────────────────────────────────────────────────
	hub := render.NewHub(api.OriginAllowed())
	builder := render.NewBuilder(hub.Publish)
	builder.Palette = t.Palette
	deps.Sink = builder

	dir := engine.NewDirector(cfg, t.Building, population, deps)
	eng := engine.NewEngine(t.FrameRateHz, t.UpdateEvery)
	eng.OnTick = func(_ uint64, dt float64) { dir.Tick(dt) }

	if *scenario != "" {
		if err := dir.StartEvacuation(kind); err != nil {
			slog.Error("failed to start scenario", "scenario", kind, "error", err)
			os.Exit(1)
		}
	}

	adminKey := os.Getenv("EVACSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("EVACSIM_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}
	addr := os.Getenv("EVACSIM_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	apiServer := &api.Server{
		Dir:      dir,
		Eng:      eng,
		Hub:      hub,
		Addr:     addr,
		AdminKey: adminKey,
	}
	srv := apiServer.Start()

	fmt.Printf("\n%s is ready: %d agents, %d exits.\n", t.Building.Name, len(population), len(t.Building.Exits()))
	fmt.Printf("API: http://localhost%s/api/v1/status\n", addr)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
	fmt.Println("Simulation stopped.")
}

// applyCatalog swaps in a stored layout and/or profile set.
func applyCatalog(t *tuning.Tuning, path, layout, set string) error {
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if layout != "" {
		b, err := db.LoadLayout(layout)
		if err != nil {
			return err
		}
		t.Building = b
		slog.Info("layout loaded from catalog", "layout", layout, "exits", len(b.Exits()))
	}
	if set != "" {
		profiles, err := db.LoadProfiles(set)
		if err != nil {
			return err
		}
		t.Profiles = profiles
		slog.Info("profiles loaded from catalog", "set", set, "count", len(profiles))
	}
	return t.Validate()
}

func assetCheck(dir string) agents.AssetCheck {
	return func(model string) bool {
		_, err := os.Stat(filepath.Join(dir, model+".glb"))
		return err == nil
	}
}

func runHeadless(ctx context.Context, cfg engine.Config, t tuning.Tuning, population []*agents.Agent, deps engine.Deps, kind engine.ScenarioKind, maxTicks int) int {
	rec := render.NewRecorder(1)
	builder := render.NewBuilder(rec.Record)
	builder.Palette = t.Palette
	deps.Sink = builder

	dir := engine.NewDirector(cfg, t.Building, population, deps)
	if err := dir.StartEvacuation(kind); err != nil {
		slog.Error("failed to start scenario", "scenario", kind, "error", err)
		return 1
	}

	dt := engine.NewEngine(t.FrameRateHz, t.UpdateEvery).Delta()
	for i := 0; i < maxTicks && !dir.IsComplete(); i++ {
		if ctx.Err() != nil {
			break
		}
		dir.Tick(dt)
	}

	sc, _ := dir.Scenario()
	slog.Info("headless run finished",
		"run_id", sc.RunID,
		"scenario", sc.Kind,
		"complete", dir.IsComplete(),
		"evacuated", dir.EvacuatedCount(),
		"total", dir.TotalCount(),
		"ticks", dir.TickCount(),
		"sim_seconds", fmt.Sprintf("%.2f", sc.Elapsed),
	)
	if f, ok := rec.Last(); ok {
		slog.Debug("last frame", "tick", f.Tick, "agents", len(f.Agents), "hazards", len(f.Hazards))
	}
	if errors.Is(ctx.Err(), context.Canceled) || !dir.IsComplete() {
		return 1
	}
	return 0
}
