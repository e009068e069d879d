package records

type DirectoryEntry struct {
	Key         EntryKey
	FileName    string
	IsDirectory bool
	InUse       bool
}

// DirectoryResolver lists the entries whose $FILE_NAME points at a
// directory.
type DirectoryResolver interface {
	Children(key EntryKey) ([]*DirectoryEntry, error)
}

// ListDirectory resolves the address and returns the directory's
// children exactly as the resolver supplies them.
func ListDirectory(set RecordSet, resolver DirectoryResolver,
	address string) (EntryKey, []*DirectoryEntry, error) {
	key, err := Resolve(set, address)
	if err != nil {
		return 0, nil, err
	}

	children, err := resolver.Children(key)
	if err != nil {
		return key, nil, err
	}
	return key, children, nil
}
