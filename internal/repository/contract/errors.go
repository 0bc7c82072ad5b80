package contract

import "errors"

// ErrRecordMissing is returned by in-place counter updates that matched no row.
var ErrRecordMissing = errors.New("record not found")

// ErrStatusChanged is returned by conditional updates when the stored status no longer matches.
var ErrStatusChanged = errors.New("record status changed concurrently")
