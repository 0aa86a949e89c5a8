package store

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/notepilot/internal/studypack"
)

// Partition keys. Pack and image lists are partitioned by normalized email;
// the signed-in identity and the theme mode are single global slots.
const (
	packsKeyPrefix  = "ssp_packs_"
	imagesKeyPrefix = "ssp_images_"
	identityKey     = "ssp_user"
	themeModeKey    = "theme"
)

// PacksKey returns the partition key of the pack list for email.
func PacksKey(email string) string {
	return packsKeyPrefix + studypack.PartitionKey(email)
}

// ImagesKey returns the partition key of the image map for email.
func ImagesKey(email string) string {
	return imagesKeyPrefix + studypack.PartitionKey(email)
}

// StorageWriteError reports a failed persist. The in-memory state the caller
// holds is still authoritative for the current session.
type StorageWriteError struct {
	Kind string // "packs", "images", "identity" or "theme"
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Kind, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

func writeError(kind string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageWriteError{Kind: kind, Err: err}
}

// decodeJSON unmarshals b into v. A missing blob decodes to the zero value.
func decodeJSON(b []byte, ok bool, v any) error {
	if !ok || len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}
