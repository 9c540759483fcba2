package ports

// Archiver defines the interface for packing recipe outputs into artifact
// blobs and unpacking them back into the workspace.
//
//go:generate go run go.uber.org/mock/mockgen -source=archiver.go -destination=mocks/mock_archiver.go -package=mocks
type Archiver interface {
	// Pack collects the given paths, relative to dir, into a single blob.
	Pack(dir string, paths []string) ([]byte, error)

	// Unpack restores a blob produced by Pack into dir.
	Unpack(dir string, blob []byte) error
}
