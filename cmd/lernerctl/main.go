package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/daniel-lerner/lerners-game-tournament/config"
	"github.com/daniel-lerner/lerners-game-tournament/db"
	"github.com/daniel-lerner/lerners-game-tournament/importer"
	"github.com/daniel-lerner/lerners-game-tournament/models"
	"github.com/daniel-lerner/lerners-game-tournament/ranking"
	"github.com/daniel-lerner/lerners-game-tournament/repositories"
	"github.com/daniel-lerner/lerners-game-tournament/scoring"
	"github.com/fatih/color"
	"golang.org/x/crypto/bcrypt"
)

const usage = `usage: lernerctl <command> [flags]

commands:
  hash-passcode <passcode>        print a bcrypt hash for ADMIN_PASSCODE_HASH
  standings [-edition 2026]       print the ranking of an edition
  import-legacy -file export.csv  import the previous edition from a ';' separated export
  seed-games                      upsert the default game catalog
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "hash-passcode":
		err = hashPasscode(os.Stdout, args)
	case "standings":
		err = standings(ctx, os.Stdout, args)
	case "import-legacy":
		err = importLegacy(ctx, args)
	case "seed-games":
		err = seedGames(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func hashPasscode(w io.Writer, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return errors.New("hash-passcode takes exactly one passcode")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash passcode: %w", err)
	}
	fmt.Fprintln(w, string(hash))
	return nil
}

// connect открывает Postgres из конфигурации; в памяти CLI работать не может.
func connect() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Storage != config.StoragePostgres {
		return nil, nil, fmt.Errorf("lernerctl needs STORAGE=%s", config.StoragePostgres)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	conn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, conn, nil
}

func standings(ctx context.Context, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("standings", flag.ContinueOnError)
	edition := fs.String("edition", "", "edition to rank (default CURRENT_EDITION)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, conn, err := connect()
	if err != nil {
		return err
	}
	defer conn.Close()
	if *edition == "" {
		*edition = cfg.CurrentEdition
	}

	players, err := repositories.NewPostgresPlayerRepository(conn).List(ctx)
	if err != nil {
		return fmt.Errorf("list players: %w", err)
	}
	printStandings(w, *edition, ranking.Rank(players, *edition))
	return nil
}

func printStandings(w io.Writer, edition string, rows []models.Standing) {
	header := color.New(color.FgCyan, color.Bold)
	podium := []*color.Color{
		color.New(color.FgYellow, color.Bold),
		color.New(color.FgWhite, color.Bold),
		color.New(color.FgRed),
	}

	header.Fprintf(w, "Edition %s\n", edition)
	header.Fprintf(w, "%-4s %-30s %6s %7s %5s\n", "#", "Player", "Points", "Matches", "Wins")
	if len(rows) == 0 {
		fmt.Fprintln(w, "no players yet")
		return
	}
	for i, s := range rows {
		line := fmt.Sprintf("%-4d %-30s %6d %7d %5d", s.Place, s.Name, s.TotalPoints, s.MatchesPlayed, s.Wins)
		if i < len(podium) {
			podium[i].Fprintln(w, line)
			continue
		}
		fmt.Fprintln(w, line)
	}
}

func importLegacy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import-legacy", flag.ContinueOnError)
	path := fs.String("file", "", "path to the exported CSV")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*path) == "" {
		return errors.New("-file is required")
	}

	file, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("open csv file: %w", err)
	}
	defer file.Close()

	cfg, conn, err := connect()
	if err != nil {
		return err
	}
	defer conn.Close()

	players, err := importer.ParseLegacyCSV(file, importer.LegacyOptions{
		Edition:      cfg.PreviousEdition,
		PointsColumn: cfg.LegacyPointsColumn,
	})
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}
	if err := repositories.NewPostgresPlayerRepository(conn).CreateBatch(ctx, players); err != nil {
		return fmt.Errorf("import players: %w", err)
	}
	color.Green("Imported %d players into edition %s", len(players), cfg.PreviousEdition)
	return nil
}

func seedGames(ctx context.Context) error {
	_, conn, err := connect()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}
	games := scoring.DefaultCatalog()
	if err := repositories.NewPostgresGameRepository(conn).UpsertAll(ctx, games); err != nil {
		return fmt.Errorf("seed games: %w", err)
	}
	color.Green("Seeded %d games", len(games))
	return nil
}
