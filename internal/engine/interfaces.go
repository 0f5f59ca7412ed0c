package engine

import (
	"github.com/comexar/despacho/internal/model"
)

// Catalog is the read surface the engine needs from the loaded code table.
// *nomenclature.Table satisfies it; tests substitute small fixtures.
type Catalog interface {
	ResolveExact(query string) (match *model.Position, ambiguous []*model.Position)
	ResolveApproximate(query string, maxResults int) []model.Candidate
	ChildrenOf(parentCode string) []*model.Position
}
