package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/nprole/flagmatch/api"
	"github.com/nprole/flagmatch/auth"
	"github.com/nprole/flagmatch/events"
	"github.com/nprole/flagmatch/game"
	"github.com/nprole/flagmatch/session"
)

// runPlay drives the interactive game loop: connect with the stored token,
// queue for a match, answer rounds, show results, repeat or quit.
func runPlay(ctx context.Context, cfg *Config) error {
	store, err := auth.NewStore(cfg.tokenFile)
	if err != nil {
		return err
	}
	token, ok := store.Token()
	if !ok {
		return fmt.Errorf("not logged in; run %q first", "flagmatch login")
	}
	user, err := auth.CurrentUser(token)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	refresh := &events.Signal{}
	feed := game.New(cfg.serverURL)
	machine := session.New(feed, refresh)
	defer machine.Close()

	// Finished games bump server-side stats; refetch them out of band the
	// way the web client's navbar does.
	account := api.New(cfg.apiURL).WithToken(token)
	statsSub := refresh.Listen(func() {
		go func() {
			stats, err := account.PlayerStats()
			if err != nil {
				logf(cfg, "STATS: refresh failed: %v", err)
				return
			}
			fmt.Printf("\n[level %d | %d xp | %d played | %d won]\n",
				stats.Level, stats.XP, stats.GamesPlayed, stats.GamesWon)
		}()
	})
	defer statsSub.Unsubscribe()

	// Repaints are coalesced; the loop always renders the latest snapshot.
	repaint := make(chan struct{}, 1)
	machine.SetOnChange(func() {
		select {
		case repaint <- struct{}{}:
		default:
		}
	})

	logf(cfg, "GAME: connecting to %s as %s", cfg.serverURL, user.Username)
	if err := machine.Connect(token); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	fmt.Printf("Welcome, %s. Press j to join the queue, q to quit.\n", user.Username)

	var last session.Snapshot
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-repaint:
			snap := machine.Snapshot()
			render(last, snap, user)
			last = snap
		case line, open := <-lines:
			if !open {
				return nil
			}
			if quit := handleInput(machine, machine.Snapshot(), line); quit {
				return nil
			}
		}
	}
}

// handleInput maps one line of input onto a session intent. Reports whether
// the player asked to quit.
func handleInput(machine *session.Machine, snap session.Snapshot, line string) bool {
	switch strings.ToLower(line) {
	case "q", "quit":
		return true
	case "j", "join":
		machine.JoinQueue()
		return false
	case "l", "leave":
		machine.LeaveQueue()
		return false
	case "p", "play":
		machine.PlayAgain()
		return false
	}

	if snap.Phase == session.InRound && snap.Game != nil {
		if n, err := strconv.Atoi(line); err == nil {
			options := snap.Game.Round.Options
			if n >= 1 && n <= len(options) {
				machine.SelectOption(options[n-1])
			}
		}
	}
	return false
}

// render prints whatever changed since the previous snapshot. The terminal
// is append-only; full-screen redraws would fight the input prompt.
func render(prev, snap session.Snapshot, user *auth.User) {
	if snap.ErrorMessage != "" && snap.ErrorMessage != prev.ErrorMessage {
		fmt.Printf("! %s\n", snap.ErrorMessage)
	}

	if snap.Conn != prev.Conn {
		if snap.Conn == session.Connected {
			fmt.Println("Connected to game server.")
		} else {
			fmt.Println("Disconnected from game server.")
		}
	}

	if snap.InQueue && snap.QueueStatus != prev.QueueStatus {
		fmt.Println(snap.QueueStatus)
	}

	switch {
	case snap.Phase == session.InRound && snap.Game != nil:
		round := snap.Game.Round
		if prev.Game == nil || prev.Phase != session.InRound ||
			prev.Game.Round.RoundNumber != round.RoundNumber {
			renderRound(snap, user)
		} else if snap.TimeRemaining != prev.TimeRemaining && snap.CanAnswer {
			fmt.Printf("  %ds left\n", snap.TimeRemaining)
		}
		if snap.HasSelected && !prev.HasSelected {
			fmt.Printf("You answered %q.\n", snap.Selected)
		}

	case snap.Phase == session.BetweenRounds && prev.Phase == session.InRound:
		if !snap.HasSelected {
			fmt.Println("Time's up! Waiting for the next round...")
		} else {
			fmt.Println("Waiting for the next round...")
		}

	case snap.Phase == session.Finished && prev.Phase != session.Finished:
		renderResults(snap, user)
	}
}

func renderRound(snap session.Snapshot, user *auth.User) {
	data := snap.Game
	round := data.Round

	fmt.Printf("\n--- Round %d ---\n", round.RoundNumber)
	fmt.Printf("Which country does this flag belong to? [%s]\n", round.Flag)
	for i, option := range round.Options {
		fmt.Printf("  %d) %s\n", i+1, option)
	}
	fmt.Printf("Answer with 1-%d within %d seconds.\n", len(round.Options), snap.TimeRemaining)

	for _, p := range data.Players {
		marker := " "
		if p.UserID == user.ID {
			marker = "*"
		}
		fmt.Printf("  %s %s: %d\n", marker, p.Username, p.Score)
	}
}

func renderResults(snap session.Snapshot, user *auth.User) {
	results := snap.Results
	if results == nil {
		return
	}

	fmt.Printf("\n=== Game over (%d/%d rounds) ===\n", results.CompletedRounds, results.TotalRounds)
	for _, r := range results.Results {
		marker := " "
		if r.UserID == user.ID {
			marker = "*"
		}
		fmt.Printf("  %s %s: %d points (%d/%d correct)\n",
			marker, r.Username, r.Score, r.CorrectAnswers, r.TotalAnswers)
	}
	fmt.Println("Press p to play again, q to quit.")
}
