// warhex-sim runs battles headlessly from a YAML roster: a single seeded
// battle with its full log, or a batch sweep over many seeds aggregating
// win rates.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"

	"warhex/internal/army"
	"warhex/internal/battle"
	"warhex/internal/keys"
)

type singleResult struct {
	Seed       int64          `json:"seed"`
	Winner     int            `json:"winner"`
	Rounds     int            `json:"rounds"`
	Survivors1 map[string]int `json:"survivors_player1"`
	Survivors2 map[string]int `json:"survivors_player2"`
	LogDigest  string         `json:"log_digest"`
	Log        []string       `json:"log,omitempty"`
}

type batchSummary struct {
	Runs        int     `json:"runs"`
	Player1Wins int     `json:"player1_wins"`
	Player2Wins int     `json:"player2_wins"`
	Draws       int     `json:"draws"`
	Player1Rate float64 `json:"player1_win_rate"`
	Player2Rate float64 `json:"player2_win_rate"`
	DrawRate    float64 `json:"draw_rate"`
	AvgRounds   float64 `json:"avg_rounds"`
	BaseSeed    int64   `json:"base_seed"`
	ArmyKey     string  `json:"army_key"`
}

func main() {
	var rosterPath, out string
	var seed int64
	var n int
	var saveLog bool
	flag.StringVar(&rosterPath, "roster", "roster.yaml", "YAML roster file with army1/army2 (and optional rules)")
	flag.StringVar(&out, "out", "", "output file; empty prints to stdout")
	flag.Int64Var(&seed, "seed", 12345, "base seed; batch runs use seed+i")
	flag.IntVar(&n, "n", 1, "number of battles to simulate")
	flag.BoolVar(&saveLog, "log", true, "include the full battle log when n==1")
	flag.Parse()

	roster, err := army.LoadRoster(rosterPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load roster: %v\n", err)
		os.Exit(1)
	}
	army1, army2 := roster.Specs()
	opts := battle.DefaultOptions()
	if roster.Rules != nil {
		opts = *roster.Rules
	}

	if n <= 1 {
		bt, err := battle.New(army1, army2, seed, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "new battle: %v\n", err)
			os.Exit(1)
		}
		for bt.Step() {
			if !opts.ApplyEventsImmediately {
				bt.DrainEvents()
			}
		}
		res := singleResult{
			Seed:       seed,
			Winner:     bt.Winner,
			Rounds:     bt.RoundNum,
			Survivors1: bt.Survivors(1),
			Survivors2: bt.Survivors(2),
			LogDigest:  keys.LogDigest(bt.Log),
		}
		if saveLog {
			res.Log = bt.Log
		}
		writeResult(out, res)
		fmt.Printf("Single battle finished. Winner=%d, Rounds=%d\n", bt.Winner, bt.RoundNum)
		return
	}

	var (
		mu        sync.Mutex
		wins      [3]int // index: draw, player 1, player 2
		sumRounds int
	)
	wg := sync.WaitGroup{}
	workers := 8
	jobs := make(chan int, n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				bt, err := battle.New(army1, army2, seed+int64(i), opts)
				if err != nil {
					fmt.Fprintf(os.Stderr, "new battle: %v\n", err)
					os.Exit(1)
				}
				for bt.Step() {
					if !opts.ApplyEventsImmediately {
						bt.DrainEvents()
					}
				}
				mu.Lock()
				if bt.Winner >= 0 && bt.Winner <= 2 {
					wins[bt.Winner]++
				}
				sumRounds += bt.RoundNum
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	summary := batchSummary{
		Runs:        n,
		Player1Wins: wins[1],
		Player2Wins: wins[2],
		Draws:       wins[0],
		Player1Rate: float64(wins[1]) / float64(n),
		Player2Rate: float64(wins[2]) / float64(n),
		DrawRate:    float64(wins[0]) / float64(n),
		AvgRounds:   float64(sumRounds) / float64(n),
		BaseSeed:    seed,
		ArmyKey:     keys.ArmyKey(army1, army2),
	}
	writeResult(out, summary)
	fmt.Printf("Batch %d done: P1=%.1f%% P2=%.1f%% draws=%.1f%%\n",
		n, summary.Player1Rate*100, summary.Player2Rate*100, summary.DrawRate*100)
}

func writeResult(out string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
	if out == "" {
		fmt.Println(string(b))
		return
	}
	if err := os.WriteFile(out, append(b, '\n'), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", out, err)
		os.Exit(1)
	}
}
