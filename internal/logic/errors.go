package logic

import "errors"

// ErrNoCandidates is returned by selection helpers given an empty candidate list.
var ErrNoCandidates = errors.New("no candidates to select from")
