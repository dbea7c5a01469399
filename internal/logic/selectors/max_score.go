package selectors

import logic "github.com/patrickwarner/chatads/internal/logic"

// MaxScore selects uniformly at random among the candidates sharing the
// highest score.
type MaxScore struct {
	Picker Picker
}

// NewMaxScore returns a MaxScore selector. A nil picker uses RandomPicker.
func NewMaxScore(p Picker) MaxScore {
	if p == nil {
		p = RandomPicker{}
	}
	return MaxScore{Picker: p}
}

// Select returns a candidate whose score equals the maximum in scored.
func (s MaxScore) Select(scored []logic.Scored) (logic.Scored, error) {
	ties := TieSet(scored)
	if len(ties) == 0 {
		return logic.Scored{}, logic.ErrNoCandidates
	}
	p := s.Picker
	if p == nil {
		p = RandomPicker{}
	}
	i := p.Pick(len(ties))
	if i < 0 || i >= len(ties) {
		i = 0
	}
	return ties[i], nil
}

// TieSet returns the candidates achieving the maximum score, in input order.
func TieSet(scored []logic.Scored) []logic.Scored {
	if len(scored) == 0 {
		return nil
	}
	best := scored[0].Score
	for _, s := range scored[1:] {
		if s.Score > best {
			best = s.Score
		}
	}
	var out []logic.Scored
	for _, s := range scored {
		if s.Score == best {
			out = append(out, s)
		}
	}
	return out
}
