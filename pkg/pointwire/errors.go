// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package pointwire

import "errors"

// Codec errors.
var (
	// ErrUnknownType is returned by type table lookups for tags with no
	// entry. Frame decoding does not fail on it; the record is kept opaque
	// and the decoder resynchronizes on the next header sentinel. Encoding
	// does fail on it, since an outbound value needs a known width.
	ErrUnknownType = errors.New("unknown point type tag")

	// ErrUnknownIndex is returned by registry lookups for indices that have
	// never been observed. Frame decoding does not fail on it; the record is
	// kept as an opaque value.
	ErrUnknownIndex = errors.New("unknown point index")

	// ErrMalformedFrame is returned when a record does not start with the
	// header sentinel. No resynchronization is attempted.
	ErrMalformedFrame = errors.New("malformed frame header")

	// ErrTruncatedFrame is returned when the buffer ends before a record's
	// declared value width.
	ErrTruncatedFrame = errors.New("truncated frame")

	// ErrValueRange is returned when encoding a value that does not fit the
	// point type's width.
	ErrValueRange = errors.New("value out of range for point type")
)
