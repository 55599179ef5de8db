package merge

import "github.com/dolthub/nickelcfg/internal/term"

// splitResult is the outcome of partitioning two field maps (spec.md
// §4.3): left = m1 \ m2, right = m2 \ m1, and center holds the field pair
// for every key present in both. Order within each part follows the
// source map's own iteration order.
type splitResult struct {
	left    []term.Ident
	right   []term.Ident
	center  []term.Ident
	leftMap *term.OrderedFields
	rightMap *term.OrderedFields
}

// split partitions m1 and m2 as spec.md §4.3 describes: iterate m1,
// probing and classifying against m2.
func split(m1, m2 *term.OrderedFields) splitResult {
	res := splitResult{leftMap: m1, rightMap: m2}
	seen := make(map[term.Ident]struct{}, m1.Len())

	m1.Range(func(id term.Ident, _ *term.Field) bool {
		seen[id] = struct{}{}
		if m2.Has(id) {
			res.center = append(res.center, id)
		} else {
			res.left = append(res.left, id)
		}
		return true
	})

	m2.Range(func(id term.Ident, _ *term.Field) bool {
		if _, ok := seen[id]; !ok {
			res.right = append(res.right, id)
		}
		return true
	})

	return res
}
