package env

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Load reads KEY=VALUE lines from the given file (e.g. ".env") into the process
// environment. Variables already set in the environment are left alone.
// The file may be missing; that is not an error.
func Load(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}
