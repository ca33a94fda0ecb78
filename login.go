package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nprole/flagmatch/api"
	"github.com/nprole/flagmatch/auth"
)

func newLoginCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := prompt("Username: ")
			if err != nil {
				return err
			}
			password, err := prompt("Password: ")
			if err != nil {
				return err
			}

			token, err := api.New(cfg.apiURL).Login(username, password)
			if err != nil {
				return err
			}

			store, err := auth.NewStore(cfg.tokenFile)
			if err != nil {
				return err
			}
			if err := store.Save(token); err != nil {
				return err
			}

			user, err := auth.CurrentUser(token)
			if err != nil {
				return err
			}
			logf(cfg, "AUTH: token stored for %s", user.Username)
			fmt.Printf("Logged in as %s.\n", user.Username)
			return nil
		},
	}
}

func newRegisterCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := prompt("Username: ")
			if err != nil {
				return err
			}
			email, err := prompt("Email (optional): ")
			if err != nil {
				return err
			}
			password, err := prompt("Password: ")
			if err != nil {
				return err
			}

			message, err := api.New(cfg.apiURL).Register(username, email, password)
			if err != nil {
				return err
			}
			if message == "" {
				message = "Account created."
			}
			fmt.Println(message)
			fmt.Printf("Run %q to play.\n", "flagmatch login")
			return nil
		},
	}
}

func newLogoutCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored access token.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := auth.NewStore(cfg.tokenFile)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

// stdin is shared across prompts so buffered input is not lost between them.
var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
