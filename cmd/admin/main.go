// Package main provides ledger administration utilities for onchat.
//
// Commands act as the current admin recorded in the ledger state, so every
// change flows through the same service path as a signed HTTP request and
// leaves the same event trail.
package main

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"os"

	"onchat/internal/config"
	"onchat/internal/database"
	"onchat/internal/fees"
	"onchat/internal/payout"
	"onchat/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin info                              - Show ledger state")
	fmt.Println("  go run ./cmd/admin set-treasury <address>            - Point the treasury share at a new wallet")
	fmt.Println("  go run ./cmd/admin transfer-admin <address>          - Hand the admin role to a new wallet")
	fmt.Println("  go run ./cmd/admin set-creation-fee <eth>            - Set the channel creation fee")
	fmt.Println("  go run ./cmd/admin set-message-fee-base <eth>        - Set the flat message fee")
	fmt.Println("  go run ./cmd/admin set-message-fee-per-byte <eth>    - Set the per-byte message fee")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	treasury := service.NewTreasuryService(db, payout.NewRecorder(), nil)

	info, err := treasury.GetLedgerInfo(ctx)
	if err != nil {
		log.Fatalf("Failed to read ledger state (run migrations first?): %v", err)
	}
	admin := info.AdminAddress

	command := os.Args[1]

	switch command {
	case "info":
		printInfo(info)

	case "set-treasury":
		target := requireArg("set-treasury <address>")
		if err := treasury.SetTreasuryWallet(ctx, admin, target); err != nil {
			log.Fatalf("Failed to set treasury wallet: %v", err)
		}
		fmt.Printf("✅ Treasury wallet is now %s\n", target)

	case "transfer-admin":
		target := requireArg("transfer-admin <address>")
		if err := treasury.TransferAdmin(ctx, admin, target); err != nil {
			log.Fatalf("Failed to transfer admin: %v", err)
		}
		fmt.Printf("✅ Admin role handed to %s\n", target)

	case "set-creation-fee":
		wei := requireEthArg("set-creation-fee <eth>")
		if err := treasury.SetChannelCreationFee(ctx, admin, wei); err != nil {
			log.Fatalf("Failed to set channel creation fee: %v", err)
		}
		fmt.Printf("✅ Channel creation fee is now %s ETH (%s wei)\n", fees.WeiToEther(wei), wei)

	case "set-message-fee-base":
		wei := requireEthArg("set-message-fee-base <eth>")
		if err := treasury.SetMessageFeeBase(ctx, admin, wei); err != nil {
			log.Fatalf("Failed to set message fee base: %v", err)
		}
		fmt.Printf("✅ Message fee base is now %s ETH (%s wei)\n", fees.WeiToEther(wei), wei)

	case "set-message-fee-per-byte":
		wei := requireEthArg("set-message-fee-per-byte <eth>")
		if err := treasury.SetMessageFeePerByte(ctx, admin, wei); err != nil {
			log.Fatalf("Failed to set message fee per byte: %v", err)
		}
		fmt.Printf("✅ Message fee per byte is now %s ETH (%s wei)\n", fees.WeiToEther(wei), wei)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
	}
}

func requireArg(form string) string {
	if len(os.Args) < 3 {
		fmt.Printf("Usage: go run ./cmd/admin %s\n", form)
		os.Exit(1)
	}
	return os.Args[2]
}

func requireEthArg(form string) *big.Int {
	raw := requireArg(form)
	wei, err := fees.EtherToWei(raw)
	if err != nil {
		log.Fatalf("Invalid ether amount %q: %v", raw, err)
	}
	return wei
}

func printInfo(info *service.LedgerInfo) {
	fmt.Println("\n📋 Ledger State:")
	fmt.Println("─────────────────────────────────────")
	fmt.Printf("Admin:              %s\n", info.AdminAddress)
	fmt.Printf("Treasury wallet:    %s\n", info.TreasuryWallet)
	fmt.Printf("Treasury balance:   %s ETH\n", fees.WeiToEther(&info.TreasuryBalance.Int))
	fmt.Printf("Creation fee:       %s ETH\n", fees.WeiToEther(&info.ChannelCreationFee.Int))
	fmt.Printf("Message fee base:   %s ETH\n", fees.WeiToEther(&info.MessageFeeBase.Int))
	fmt.Printf("Message fee / byte: %s ETH\n", fees.WeiToEther(&info.MessageFeePerByte.Int))
	fmt.Printf("Channels:           %d\n", info.ChannelCount)
	fmt.Println("─────────────────────────────────────")
}
