package youtube

import (
	"fmt"
	"math/rand"
)

// spiritualKeywords bias every query toward worship music, mirroring the
// product's catalog focus.
var spiritualKeywords = []string{
	"Worship",
	"Praise",
	"Gospel",
	"Faith",
	"Jesus",
	"Hallelujah",
	"Prayer",
	"Spirit",
	"Grace",
	"Blessing",
}

// QueryBuilder combines user input with a randomly chosen spiritual
// keyword. The random source is injectable so tests get stable output.
type QueryBuilder struct {
	rand *rand.Rand
}

// NewQueryBuilder creates a QueryBuilder with the given random source; a
// nil source falls back to the shared global one.
func NewQueryBuilder(r *rand.Rand) *QueryBuilder {
	return &QueryBuilder{rand: r}
}

func (b *QueryBuilder) keyword() string {
	if b.rand != nil {
		return spiritualKeywords[b.rand.Intn(len(spiritualKeywords))]
	}
	return spiritualKeywords[rand.Intn(len(spiritualKeywords))]
}

// Build combines the user query with a spiritual keyword; with no user
// query it produces a standalone discovery query.
func (b *QueryBuilder) Build(userQuery string) string {
	keyword := b.keyword()
	if userQuery != "" {
		return fmt.Sprintf("%s %s music", userQuery, keyword)
	}
	return fmt.Sprintf("%s music songs", keyword)
}
