package listing

import "github.com/PIUMYOMIN/ekaro-sub002/internal/domain"

// PruneCategories removes, for display purposes only, every subtree whose
// aggregate product count is zero. A node survives when it has products of
// its own or at least one surviving child. The input tree is not mutated;
// fetch parameters are unaffected (the server only ever receives a flat
// category id).
func PruneCategories(tree []*domain.Category) []*domain.Category {
	var kept []*domain.Category
	for _, node := range tree {
		if pruned := pruneCategory(node); pruned != nil {
			kept = append(kept, pruned)
		}
	}
	return kept
}

func pruneCategory(node *domain.Category) *domain.Category {
	if node == nil {
		return nil
	}

	children := PruneCategories(node.Children)
	if node.ProductsCount == 0 && len(children) == 0 {
		return nil
	}

	clone := *node
	clone.Children = children
	return &clone
}
