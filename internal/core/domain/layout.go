package domain

const (
	// DataFileName is the payload file inside an entry directory.
	DataFileName = ".data"

	// MetadataFileName is the metadata file inside an entry directory.
	// Its modification time doubles as the entry's last-access time.
	MetadataFileName = ".metadata"

	// LockFileName is the advisory lock file inside an entry directory.
	LockFileName = ".lock"

	// EntryDepth is the fixed nesting depth of entry directories below the
	// cache root (<team>/<algorithm>/<checksum>). The scanner treats any
	// directory at exactly this depth as one entry and does not descend
	// into it.
	EntryDepth = 3

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)
