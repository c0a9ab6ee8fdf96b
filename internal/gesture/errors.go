package gesture

import "errors"

// ErrInvalidLandmarkCount is returned by Encode when the input does not
// contain exactly NumLandmarks points.
var ErrInvalidLandmarkCount = errors.New("gesture: expected 21 landmarks")

// ErrInvalidState is returned by Import when the supplied state is
// missing required fields or carries a prototype of the wrong length.
var ErrInvalidState = errors.New("gesture: invalid recognizer state")
