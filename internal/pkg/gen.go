package pkg

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

var (
	slugAdjectives = []string{
		"brave", "calm", "clever", "eager", "fuzzy", "gentle", "grand", "happy",
		"jolly", "lucky", "mighty", "noble", "proud", "quick", "sleepy", "witty",
	}

	slugColors = []string{
		"amber", "blue", "coral", "crimson", "golden", "green", "indigo", "ivory",
		"jade", "olive", "pink", "purple", "red", "silver", "teal", "violet",
	}

	slugAnimals = []string{
		"badger", "bear", "crane", "falcon", "fox", "heron", "lion", "lynx",
		"otter", "owl", "panda", "raven", "tiger", "walrus", "whale", "wolf",
	}
)

// GenerateSlug - builds a human-readable game identifier from three dictionary
// words, e.g. "brave-red-tiger". Uniqueness is enforced by the lobby directory,
// not here; the caller retries on collision.
func GenerateSlug() string {
	words := []string{
		slugAdjectives[rand.Intn(len(slugAdjectives))], //nolint: gosec // it's ok
		slugColors[rand.Intn(len(slugColors))],         //nolint: gosec // it's ok
		slugAnimals[rand.Intn(len(slugAnimals))],       //nolint: gosec // it's ok
	}

	return strings.Join(words, "-")
}

// GenerateSessionID - generates a new unique player session id.
func GenerateSessionID() string {
	return uuid.NewString()
}
