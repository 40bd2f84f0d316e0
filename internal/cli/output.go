package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mikkelsonm/bitboxing/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case model.PlayerScore:
		o.printScore(v)
	case []model.PlayerScore:
		o.printLeaderboard(v)
	case []model.CacheStanding:
		o.printStandings(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printScore(score model.PlayerScore) {
	fmt.Printf("Player: %s\n", score.Player)
	fmt.Printf("Finds: %d\n", score.Finds)
	fmt.Printf("Solves: %d\n", score.Solves)
}

func (o *Output) printLeaderboard(scores []model.PlayerScore) {
	if len(scores) == 0 {
		fmt.Println("No players yet")
		return
	}
	for i, score := range scores {
		fmt.Printf("%2d. %s (solves: %d, finds: %d)\n", i+1, score.Player, score.Solves, score.Finds)
	}
}

func (o *Output) printStandings(standings []model.CacheStanding) {
	if len(standings) == 0 {
		fmt.Println("No finds yet")
		return
	}
	for i, standing := range standings {
		status := "unsolved"
		if standing.Stats.TimeSolved != nil {
			elapsed := time.Duration(*standing.Stats.TimeSolved - standing.Stats.TimeFound)
			status = fmt.Sprintf("solved in %s", elapsed.Round(time.Second))
		}
		fmt.Printf("%2d. %s (%s, attempts: %d)\n", i+1, standing.Player, status, standing.Stats.Attempts)
	}
}
