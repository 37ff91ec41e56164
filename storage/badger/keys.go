package badger

import "fmt"

// Key prefixes for different data types
const (
	documentPrefix = "docrec"
	artifactPrefix = "artrec"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, id))
}

// makeArtifactKey generates a key for an artifact by ID.
func makeArtifactKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", artifactPrefix, id))
}
