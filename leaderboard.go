package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/nprole/flagmatch/api"
	"github.com/nprole/flagmatch/auth"
)

func newLeaderboardCmd(cfg *Config) *cobra.Command {
	var shareQR bool

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the global leaderboard.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.New(cfg.apiURL)

			entries, err := client.Leaderboard()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tPLAYER\tLEVEL\tXP")
			for _, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", e.Rank, e.Username, e.Level, e.Experience)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if shareQR {
				code, err := qrcode.New(client.LeaderboardURL(), qrcode.Medium)
				if err != nil {
					return fmt.Errorf("qr generation failed: %w", err)
				}
				fmt.Println("\nScan to open the leaderboard:")
				fmt.Print(code.ToSmallString(false))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&shareQR, "qr", false, "print a QR code linking to the leaderboard page")

	return cmd
}

func newStatsCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show your own level, experience, and match record.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := auth.NewStore(cfg.tokenFile)
			if err != nil {
				return err
			}
			token, ok := store.Token()
			if !ok {
				return fmt.Errorf("not logged in; run %q first", "flagmatch login")
			}

			stats, err := api.New(cfg.apiURL).WithToken(token).PlayerStats()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Level\t%d\n", stats.Level)
			fmt.Fprintf(w, "Experience\t%d\n", stats.XP)
			fmt.Fprintf(w, "Games played\t%d\n", stats.GamesPlayed)
			fmt.Fprintf(w, "Games won\t%d\n", stats.GamesWon)
			return w.Flush()
		},
	}
}
