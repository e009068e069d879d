package sources

import (
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

func Fingerprint(reader io.ReaderAt, size int64) (uint64, error) {
	digest := xxhash.New()
	_, err := io.Copy(digest, io.NewSectionReader(reader, 0, size))
	if err != nil {
		return 0, errors.Wrap(err, "Fingerprint")
	}
	return digest.Sum64(), nil
}

// dedupe keeps the first source for every distinct fingerprint and
// closes the rest.
func dedupe(sources []*SourceDescriptor) (
	retained []*SourceDescriptor, dropped []*SourceDescriptor) {
	seen := make(map[uint64]bool)
	for _, source := range sources {
		if seen[source.Fingerprint] {
			source.Close()
			dropped = append(dropped, source)
			continue
		}
		seen[source.Fingerprint] = true
		retained = append(retained, source)
	}
	return retained, dropped
}
