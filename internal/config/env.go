package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// projectMarkers are files/directories whose presence identifies the
// repository root that a `.env` file would live next to.
var projectMarkers = []string{"go.mod", ".git"}

// LoadDotEnv walks up from the current working directory looking for a
// project root marker, then loads `.env` from that directory without
// overwriting variables already present in the environment.
// It is a no-op (returns nil) if no `.env` file is found.
func LoadDotEnv() error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	root := findProjectRoot(dir)
	if root == "" {
		return nil
	}
	envPath := filepath.Join(root, ".env")
	if _, err := os.Stat(envPath); err != nil {
		return nil
	}
	return godotenv.Load(envPath)
}

func findProjectRoot(start string) string {
	dir := start
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
