package httpapi

import (
	"fmt"

	"github.com/minio/highwayhash"
)

var etagKey = []byte("DeviceLineage-ETag-Key-000000000")

// ETag returns a strong entity tag for a response body.
func ETag(body []byte) (string, error) {
	hash, err := highwayhash.New64(etagKey)
	if err != nil {
		return "", err
	}
	if _, err := hash.Write(body); err != nil {
		return "", err
	}
	return fmt.Sprintf("%q", fmt.Sprintf("%016x", hash.Sum64())), nil
}
