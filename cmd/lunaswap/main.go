package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	sol "github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	core "lunaswap/core"
	"lunaswap/core/config"
	"lunaswap/core/solana"
)

var (
	configDir string
	profile   string
)

func main() {
	// A local .env can hold LUNASWAP_* overrides; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "lunaswap",
		Short: "Wallet session and persistence helpers for the lunaswap demo",
	}

	home, _ := os.UserHomeDir()
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", filepath.Join(home, ".lunaswap"), "configuration directory")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "default", "keystore profile name")

	rootCmd.AddCommand(
		initCmd(),
		connectCmd(),
		disconnectCmd(),
		statusCmd(),
		balanceCmd(),
		transferCmd(),
		statsCmd(),
		exportCmd(),
		backupCmd(),
		restoreCmd(),
		clearCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newNode() (*core.SwapNode, error) {
	cfg, err := config.LoadOrInit(configDir)
	if err != nil {
		return nil, err
	}
	return core.NewSwapNode(core.Config{
		ConfigDir:   configDir,
		RpcEndpoint: cfg.RpcEndpoint,
		Backend:     cfg.StorageBackend,
	})
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a keypair for the selected profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := newNode()
			if err != nil {
				return err
			}
			key, err := node.Keystore().Generate(profile)
			if err != nil {
				return err
			}
			fmt.Printf("Created profile %q with address %s\n", profile, key.PublicKey())
			return nil
		},
	}
}

func connectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect the profile wallet and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := newNode()
			if err != nil {
				return err
			}
			ctx := context.Background()
			if err := node.Start(ctx, profile); err != nil {
				return err
			}
			st, err := node.ConnectWallet(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Connected %s\n", st.Address)
			fmt.Printf("  SOL:  %.4f\n", st.Balances.Sol)
			fmt.Printf("  USDC: %s\n", st.Balances.Usdc)
			if st.TokenAccount != nil {
				fmt.Printf("  Token account: %s\n", st.TokenAccount)
			}
			return nil
		},
	}
}

func disconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "End the profile wallet session",
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := newNode()
			if err != nil {
				return err
			}
			ctx := context.Background()
			if err := node.Start(ctx, profile); err != nil {
				return err
			}
			node.DisconnectWallet(ctx)
			fmt.Println("Disconnected.")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the profile's key and stored session record",
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := newNode()
			if err != nil {
				return err
			}

			key, err := node.Keystore().Get(profile)
			if err != nil {
				fmt.Printf("Profile %q: no key (run init first)\n", profile)
				return nil
			}
			addr := key.PublicKey().String()
			fmt.Printf("Profile:     %s\n", profile)
			fmt.Printf("Address:     %s\n", addr)
			fmt.Printf("Connections: %d\n", node.Storage().GetConnectionCount(addr))

			for _, u := range node.Storage().GetUserData() {
				if u.Address == addr {
					fmt.Printf("Last seen:   %s\n", u.Timestamp)
					fmt.Printf("SOL:         %.4f\n", u.Balances.Sol)
					fmt.Printf("USDC:        %s\n", u.Balances.Usdc)
				}
			}
			return nil
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Show the SOL balance of any address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrInit(configDir)
			if err != nil {
				return err
			}
			client, err := solana.NewReadOnlyClient(cfg.RpcEndpoint)
			if err != nil {
				return err
			}
			pk, err := sol.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid address: %w", err)
			}
			lamports, err := client.GetBalance(context.Background(), pk)
			if err != nil {
				return err
			}
			fmt.Printf("%.9f SOL\n", float64(lamports)/float64(sol.LAMPORTS_PER_SOL))
			return nil
		},
	}
}

func transferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <recipient> <lamports>",
		Short: "Send SOL from the profile wallet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lamports, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid lamport amount: %w", err)
			}
			node, err := newNode()
			if err != nil {
				return err
			}
			ctx := context.Background()
			if err := node.Start(ctx, profile); err != nil {
				return err
			}
			sig, err := node.TransferSOL(ctx, args[0], lamports)
			if err != nil {
				return err
			}
			fmt.Printf("Confirmed: %s\n", sig)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stored session statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := newNode()
			if err != nil {
				return err
			}
			stats := node.Storage().GetDataStats()
			if stats == nil {
				return fmt.Errorf("could not read stored data")
			}
			fmt.Printf("Users:       %d\n", stats.TotalUsers)
			fmt.Printf("Connections: %d\n", stats.TotalConnections)
			if stats.LastActivity != nil {
				fmt.Printf("Last seen:   %s\n", *stats.LastActivity)
			}
			fmt.Printf("Total SOL:   %.4f\n", stats.AdminData.TotalSOL)
			fmt.Printf("Total USDC:  %.2f\n", stats.AdminData.TotalUSDC)
			fmt.Printf("Transfers:   %d\n", stats.AdminData.TotalTransfers)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the export bundle as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := newNode()
			if err != nil {
				return err
			}
			bundle := node.Storage().ExportData()
			if bundle == nil {
				return fmt.Errorf("export failed")
			}
			out, err := json.MarshalIndent(bundle, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func backupCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a dated backup file",
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := newNode()
			if err != nil {
				return err
			}
			if !node.Storage().BackupData(outDir) {
				return fmt.Errorf("backup failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write the backup into")
	return cmd
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore storage from an export bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := newNode()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			if err := node.Storage().RestoreData(f); err != nil {
				return err
			}
			fmt.Println("Restore complete.")
			return nil
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all stored session data",
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := newNode()
			if err != nil {
				return err
			}
			if !node.Storage().ClearAllData() {
				return fmt.Errorf("clear failed")
			}
			fmt.Println("Storage cleared.")
			return nil
		},
	}
}
