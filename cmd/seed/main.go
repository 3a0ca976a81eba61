// Command main runs the ledger seeder for onchat.
package main

import (
	"context"
	"flag"
	"log"

	"onchat/internal/config"
	"onchat/internal/database"
	"onchat/internal/seed"
)

func main() {
	// Parse command line flags
	numWallets := flag.Int("wallets", 12, "Number of wallets to create")
	numChannels := flag.Int("channels", 6, "Number of channels to register")
	numMessages := flag.Int("messages", 120, "Number of messages to send")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a specific seeder preset (demo, mega)")
	fixture := flag.String("fixture", "", "Replay a YAML fixture file instead of generating a mesh")
	flag.Parse()

	log.Println("🌱 Ledger Seeder")
	log.Println("================")

	switch {
	case *fixture != "":
		log.Printf("Replaying fixture: %s (ignoring count flags)\n", *fixture)
	case *preset != "":
		log.Printf("Applying preset: %s (ignoring count flags)\n", *preset)
	default:
		log.Printf("Target: %d wallets, %d channels, %d messages, clean=%v\n", *numWallets, *numChannels, *numMessages, *shouldClean)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, cfg)

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if err := seed.Channels(ctx, db, cfg); err != nil {
		log.Fatalf("❌ Built-in channel seeding failed: %v", err)
	}

	switch {
	case *fixture != "":
		fx, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("❌ Fixture load failed: %v", err)
		}
		if err := s.ApplyFixture(ctx, fx); err != nil {
			log.Fatalf("❌ Fixture seeding failed: %v", err)
		}
	case *preset != "":
		if err := s.ApplyPreset(ctx, *preset); err != nil {
			log.Fatalf("❌ Preset seeding failed: %v", err)
		}
	default:
		opts := seed.Options{
			NumWallets:  *numWallets,
			NumChannels: *numChannels,
			NumMessages: *numMessages,
		}
		if err := s.SeedMesh(ctx, opts); err != nil {
			log.Fatalf("❌ Mesh seeding failed: %v", err)
		}
	}

	log.Println("✨ All done! Your ledger is now populated with demo traffic.")
	log.Println("💰 Fees were charged for real: check /api/ledger for balances.")
}
