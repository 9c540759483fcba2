package domain

// ArtifactExtension is the file extension cache strategies append to a
// fingerprint key when naming stored blobs.
const ArtifactExtension = ".tar.gz"

// Artifact is a cached build output blob addressed by its fingerprint key.
// The byte layout is defined by the executor side (a packed archive of the
// recipe's declared outputs); the cache treats it as opaque.
type Artifact struct {
	Key  string
	Data []byte
}

// ArtifactFileName returns the object/file name for a fingerprint key.
func ArtifactFileName(key string) string {
	return key + ArtifactExtension
}
