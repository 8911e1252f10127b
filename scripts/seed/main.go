// seed loads the demo idea catalogue into the database.
//
// Every idea is created as published and owned by the demo user, with up to
// five keywords derived from its text and two authored community signals.
// Keyword metrics and signal numbers are random demo values.
//
// Usage: go run ./scripts/seed
//
// Configuration: config.yaml or PG* environment variables, as for the server.
//
// Flags:
//
//	-dry-run   List the catalogue without writing anything (default: false)
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/config"
	"github.com/ekaya-inc/upstart-engine/pkg/database"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
	"github.com/ekaya-inc/upstart-engine/pkg/repositories"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "List the catalogue without writing anything")
	flag.Parse()

	ideas, err := loadCatalogue(catalogueYAML)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if *dryRun {
		for i, idea := range ideas {
			fmt.Printf("%2d. %s %v\n", i+1, idea.Title, seedKeywords(idea.Title, idea.Description))
		}
		return
	}

	cfg, err := config.Load("seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger := zap.NewNop()

	db, err := database.Connect(ctx, database.ConfigFrom(&cfg.Database), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(cfg.Database.URL(), cfg.Database.MigrationsPath, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	scopedCtx, cleanup, err := database.NewScopeProvider(db).WithScope(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to acquire connection: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	s := &seeder{
		users:    repositories.NewUserRepository(),
		ideas:    repositories.NewIdeaRepository(),
		keywords: repositories.NewKeywordRepository(),
		signals:  repositories.NewCommunitySignalRepository(),
		rand:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	if err := s.seed(scopedCtx, ideas); err != nil {
		fmt.Fprintf(os.Stderr, "Seed failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nSeeded %d ideas with keywords and community signals\n", len(ideas))
}

// seeder writes the catalogue through the repositories.
type seeder struct {
	users    repositories.UserRepository
	ideas    repositories.IdeaRepository
	keywords repositories.KeywordRepository
	signals  repositories.CommunitySignalRepository
	rand     *rand.Rand
}

func (s *seeder) seed(ctx context.Context, ideas []seedIdea) error {
	name := models.DemoUserName
	user, err := s.users.EnsureByEmail(ctx, models.DemoUserEmail, &name)
	if err != nil {
		return fmt.Errorf("failed to provision demo user: %w", err)
	}

	for i, entry := range ideas {
		fmt.Printf("Creating idea %d/%d: %s\n", i+1, len(ideas), entry.Title)

		idea := entry.toModel(user.ID)
		if err := s.ideas.Create(ctx, idea); err != nil {
			return fmt.Errorf("failed to create idea %q: %w", entry.Title, err)
		}

		terms := seedKeywords(entry.Title, entry.Description)
		for _, term := range terms {
			if err := s.keywords.Create(ctx, randomKeyword(s.rand, idea.ID, term)); err != nil {
				return fmt.Errorf("failed to create keyword %q: %w", term, err)
			}
		}

		if len(terms) == 0 {
			continue
		}
		for _, signal := range randomSignals(s.rand, idea.ID, terms[0]) {
			if err := s.signals.Create(ctx, signal); err != nil {
				return fmt.Errorf("failed to create %s signal: %w", signal.Platform, err)
			}
		}
	}
	return nil
}
