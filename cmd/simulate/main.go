// Headless AI-vs-AI match runner for development and balance testing.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxhemmerich/dominion/internal/ai"
	"github.com/maxhemmerich/dominion/internal/game"
)

func main() {
	players := flag.Int("players", 4, "Number of AI players (2-8)")
	territories := flag.Int("territories", 60, "Territory count")
	seed := flag.Int64("seed", 0, "RNG seed (0 picks one from the clock)")
	maxTurns := flag.Int("max-turns", 500, "Turn cap before the run stops")
	difficulty := flag.String("difficulty", "medium", "AI difficulty (easy, medium, hard)")
	attacksPerTurn := flag.Int("attacks-per-turn", 5, "Attack cap per AI turn")
	verbose := flag.Bool("v", false, "Print every attack")
	flag.Parse()

	if *players < 2 || *players > 8 {
		fmt.Fprintln(os.Stderr, "players must be between 2 and 8")
		os.Exit(1)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	fmt.Printf("Simulation seed: %d\n", *seed)
	rng := rand.New(rand.NewSource(*seed))

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	opts := game.DefaultOptions()
	opts.TerritoryCount = *territories
	engine := game.NewEngine(opts, rng, logger)
	bot := ai.New(rng, logger)
	diff := ai.ParseDifficulty(*difficulty)

	roster := make([]game.PlayerInfo, *players)
	for i := range roster {
		roster[i] = game.PlayerInfo{
			ID:   fmt.Sprintf("bot-%d", i),
			Name: fmt.Sprintf("Bot %d", i),
			IsAI: true,
		}
	}
	engine.InitializeGame(roster)

	turn := 0
	for ; turn < *maxTurns && !engine.IsGameOver(); turn++ {
		current := engine.CurrentPlayer()
		if current.Alive {
			for i := 0; i < *attacksPerTurn; i++ {
				proposal, ok := bot.MakeDecision(engine.State(), current.ID, diff)
				if !ok {
					break
				}
				result := engine.ProcessAttack(proposal.FromID, proposal.ToID, current.ID)
				if *verbose {
					fmt.Printf("  %s: %d -> %d conquered=%v losses=%d/%d\n",
						current.ID, result.FromID, result.ToID,
						result.Conquered, result.AttackerLosses, result.DefenderLosses)
				}
				if !result.Success || engine.IsGameOver() {
					break
				}
			}
		}
		if engine.IsGameOver() {
			break
		}
		engine.NextTurn()

		if turn%25 == 0 {
			printStandings(engine, turn)
		}
	}

	fmt.Println()
	if engine.IsGameOver() {
		if winner := engine.Winner(); winner != "" {
			fmt.Printf("Game over after %d turns. Winner: %s\n", turn, winner)
		} else {
			fmt.Printf("Game over after %d turns. Draw.\n", turn)
		}
	} else {
		fmt.Printf("Turn cap (%d) reached without a winner.\n", *maxTurns)
	}
	printStandings(engine, turn)
}

func printStandings(engine *game.Engine, turn int) {
	fmt.Printf("Turn %d:\n", turn)
	for _, p := range engine.State().Players {
		status := "ALIVE"
		if !p.Alive {
			status = "DEAD"
		}
		fmt.Printf("  %-8s %3d territories %5d troops  %s\n",
			p.Name, p.TerritoriesOwned, p.TotalTroops, status)
	}
}
