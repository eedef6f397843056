// Package names generates human-readable names for batches submitted without
// one, in Docker-style "adjective-noun" format ("inky-quill", "golden-ledger").
//
// Batch IDs are hex and hard to tell apart in `guestctl batch ls`; a generated
// name gives operators something to recognize in listings and logs. Names are
// not unique and are never used as keys.
package names

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var adjectives = []string{
	// Letters and ink
	"inky", "scribbled", "signed", "sealed", "handwritten",
	"cursive", "penned", "inked", "stamped", "folded",
	"dog-eared", "illuminated", "gilded", "margined", "annotated",

	// Mood
	"cheerful", "curious", "eager", "friendly", "gentle",
	"hopeful", "jolly", "kind", "lucid", "merry",
	"patient", "quiet", "serene", "sunny", "witty",

	// Chain
	"blue", "golden", "onchain", "minted", "pending",
	"confirmed", "finalized", "layered", "optimistic", "based",
}

var nouns = []string{
	// Guestbook
	"quill", "ledger", "journal", "letter", "postcard",
	"envelope", "inkwell", "notebook", "scroll", "parchment",
	"signature", "margin", "page", "chapter", "bookmark",

	// Errands
	"todo", "errand", "reminder", "checklist", "memo",

	// Chain
	"block", "receipt", "nonce", "gas", "wallet",
	"bridge", "beacon", "harbor", "lighthouse", "anchor",
}

// Generate returns a random "adjective-noun" name.
func Generate() string {
	adjective := adjectives[randomIndex(len(adjectives))]
	noun := nouns[randomIndex(len(nouns))]
	return fmt.Sprintf("%s-%s", adjective, noun)
}

// randomIndex picks an index in [0, max) with crypto/rand, falling back to 0.
func randomIndex(max int) int {
	if max <= 0 {
		return 0
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}

	return int(n.Int64())
}
