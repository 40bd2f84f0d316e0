// Package catalog provides the static puzzle catalog: the built-in
// starter set and an optional JSON file loader for custom hunts.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mikkelsonm/bitboxing/internal/model"
)

// Default returns the built-in puzzle set. Codes match the printed QR
// labels handed out with the physical caches.
func Default() map[model.CacheCode]model.Puzzle {
	return map[model.CacheCode]model.Puzzle{
		"TDQXO": {
			Question: "Dlsjvtl av Ipaivepun! Aopz pz aol mpyza wbggsl!",
			Answer:   "Welcome to Bitboxing! This is the first puzzle!",
			Hint:     "Julius",
		},
		"MVMKB": {
			Question: "What is the end of everything?",
			Answer:   "G",
			Hint:     "What is the end of \"everything\"?",
		},
		"JLPOY": {
			Question: "What is the 8th Fibonacci number?",
			Answer:   "13",
			Hint:     "0, 1, 1, 2...",
		},
		"XRUZD": {
			Question: "682 1**\n" +
				"614 1*\n" +
				"206 2*\n" +
				"738 0\n" +
				"870 1*\n" +
				"???",
			Answer: "042",
			Hint:   "* Correct value\n** Correct value and in the right place",
		},
		"IBQVH": {
			Question: "Five people were eating apples.\n" +
				"A finished before B, but behind C.\n" +
				"D finished before E, but behind B.\n" +
				"What was the finishing order?",
			Answer: "CABDE",
			Hint:   "Enter the letters in order without space or punctuation. (e.g. ABCDE)",
		},
	}
}

// LoadFile reads a catalog from a JSON file mapping cache codes to
// puzzles: {"CODE": {"question": ..., "answer": ..., "hint": ...}}.
func LoadFile(path string) (map[model.CacheCode]model.Puzzle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var puzzles map[model.CacheCode]model.Puzzle
	if err := json.Unmarshal(data, &puzzles); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	for code, p := range puzzles {
		if code == "" {
			return nil, fmt.Errorf("catalog contains an empty cache code")
		}
		if p.Answer == "" {
			return nil, fmt.Errorf("catalog puzzle %q has no answer", code)
		}
	}

	return puzzles, nil
}
