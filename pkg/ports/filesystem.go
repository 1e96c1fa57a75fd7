package ports

// FileSystem abstracts the file operations used by sinks, report writers
// and image-sequence sources.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// ReadDir lists the names of regular files in a directory, sorted.
	ReadDir(path string) ([]string, error)

	// WriteFile writes data to a file, creating or truncating it.
	WriteFile(path string, data []byte) error

	// AppendFile appends data to a file, creating it if necessary.
	AppendFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)
}
