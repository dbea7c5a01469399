package selectors

import logic "github.com/patrickwarner/chatads/internal/logic"

// Selector picks the winning candidate from a scored list.
type Selector interface {
	Select(scored []logic.Scored) (logic.Scored, error)
}
