package service

import (
	"github.com/minio/highwayhash"
)

var digestKey = []byte("termmerge-document-digest-key-32")

// documentDigest fingerprints a rendered catalog.
func documentDigest(document string) (uint64, error) {
	hash, err := highwayhash.New64(digestKey)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write([]byte(document))
	return hash.Sum64(), err
}
