// Command catalog stores the building and profiles of a tuning file in a
// SQLite catalog so evacsim can load them by name.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/talgya/evacsim/internal/persistence"
	"github.com/talgya/evacsim/internal/tuning"
)

func main() {
	var (
		configPath  = flag.String("config", "configs/evacsim.yaml", "tuning file to read")
		catalogPath = flag.String("catalog", "data/catalog.db", "SQLite catalog to write")
		layoutName  = flag.String("layout", "", "name for the layout (default: the building name)")
		profileSet  = flag.String("profiles", "default", "name for the profile set")
		list        = flag.Bool("list", false, "list catalog contents and exit")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if dir := filepath.Dir(*catalogPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(*catalogPath)
	if err != nil {
		slog.Error("failed to open catalog", "path", *catalogPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *list {
		if err := printCatalog(db); err != nil {
			slog.Error("list failed", "error", err)
			os.Exit(1)
		}
		return
	}

	t, err := tuning.Load(*configPath)
	if err != nil {
		slog.Error("failed to load tuning", "path", *configPath, "error", err)
		os.Exit(1)
	}

	name := *layoutName
	if name == "" {
		name = t.Building.Name
	}
	if err := db.SaveLayout(name, t.Building); err != nil {
		slog.Error("save layout failed", "layout", name, "error", err)
		os.Exit(1)
	}
	if err := db.SaveProfiles(*profileSet, t.Profiles); err != nil {
		slog.Error("save profiles failed", "set", *profileSet, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Stored layout %q and profile set %q in %s\n", name, *profileSet, *catalogPath)
}

func printCatalog(db *persistence.DB) error {
	layouts, err := db.Layouts()
	if err != nil {
		return err
	}
	sets, err := db.ProfileSets()
	if err != nil {
		return err
	}
	fmt.Println("Layouts:")
	for _, l := range layouts {
		fmt.Println("  " + l)
	}
	fmt.Println("Profile sets:")
	for _, s := range sets {
		fmt.Println("  " + s)
	}
	return nil
}
