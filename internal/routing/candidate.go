package routing

import "github.com/antigravity/mtr-router/internal/models"

type candidateKind int

const (
	kindRail candidateKind = iota
	kindTransferWalk
	kindWildWalk
)

// candidate is one pre-collapse edge proposal between two vertices
// (§4.5.5-§4.5.6). Multiple candidates may share the same (from, to).
type candidate struct {
	from, to  string
	kind      candidateKind
	label     string
	mode      models.Mode
	colour    uint32
	terminus  string
	durationS float64
	headwayS  float64 // 0 for walk candidates
}

func (c candidate) isWalk() bool {
	return c.kind != kindRail
}

type pairKey struct {
	from, to string
}
