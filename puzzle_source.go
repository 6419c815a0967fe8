package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"letterloop/internal/puzzle"
)

var errEmptyPuzzleFile = errors.New("puzzle file has no config line")

// loadPuzzleDefinition resolves the puzzle from an inline config string,
// then the file at path, then the built-in default. It returns the
// definition and a description of where it came from.
func loadPuzzleDefinition(inline, path string) (*puzzle.Definition, string, error) {
	if inline != "" {
		def, err := puzzle.ParseDefinition(inline)
		if err != nil {
			return nil, "", fmt.Errorf("PUZZLE_CONFIG: %w", err)
		}
		return def, "env", nil
	}

	if path != "" {
		config, err := readPuzzleFile(path)
		switch {
		case err == nil:
			def, err := puzzle.ParseDefinition(config)
			if err != nil {
				return nil, "", fmt.Errorf("%s: %w", path, err)
			}
			return def, path, nil
		case errors.Is(err, os.ErrNotExist):
			logWarn("Puzzle file %s not found, using built-in puzzle", path)
		default:
			return nil, "", err
		}
	}

	def, err := puzzle.ParseDefinition(puzzle.DefaultConfig)
	if err != nil {
		return nil, "", err
	}
	return def, "built-in", nil
}

// readPuzzleFile returns the first line of path that is neither blank nor
// a '#' comment.
func readPuzzleFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return "", fmt.Errorf("%s: %w", path, errEmptyPuzzleFile)
}
