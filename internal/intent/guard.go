package intent

import (
	"github.com/ashureev/skinmatch/internal/lexicon"
	"github.com/ashureev/skinmatch/internal/textnorm"
)

// Guard rejects short turns that contain no known vocabulary.
type Guard struct {
	vocab      map[string]struct{}
	navigation []string
	maxTokens  int
}

// NewGuard builds a guard from the lexicon vocabulary.
func NewGuard(lx *lexicon.Lexicon) *Guard {
	return &Guard{
		vocab:      lx.Vocabulary(),
		navigation: lx.NavigationPhrases,
		maxTokens:  2,
	}
}

// IsGibberish reports whether raw should be answered with a clarification
// instead of being processed. Navigation phrases always pass.
func (g *Guard) IsGibberish(raw string) bool {
	text := textnorm.Normalize(raw)
	if text == "" {
		return true
	}
	if textnorm.ContainsAny(text, g.navigation) {
		return false
	}
	words := textnorm.Words(text)
	if len(words) > g.maxTokens {
		return false
	}
	for _, w := range words {
		if _, ok := g.vocab[w]; ok {
			return false
		}
	}
	return true
}
