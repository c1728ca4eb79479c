package object

import (
	"context"
	"errors"
	"io"
	"path"

	"greencode-backend/internal/shared/util"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Put(ctx context.Context, storageKey string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// ReportKey returns the storage key of an analysis report archive. The user
// segment is hashed so raw identifiers never appear in object paths.
func ReportKey(userID, analysisID string) (string, error) {
	name, err := util.ObjectName(analysisID + ".txt")
	if err != nil {
		return "", err
	}
	return path.Join("reports", util.OwnerSegment(userID), name), nil
}
