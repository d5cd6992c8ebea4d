package form

import "sort"

// RegionKind tags the construct a TagRegion covers.
type RegionKind string

const (
	RegionForm  RegionKind = "form"
	RegionGroup RegionKind = "group"
	RegionField RegionKind = "field"
	RegionNote  RegionKind = "note"
	RegionDoc   RegionKind = "doc"
)

// TagRegion records the byte span of one recognized construct in the raw
// (post-frontmatter) source: Start inclusive, End exclusive. HasValue marks
// field regions whose span includes an inline value payload. Regions are the
// sole mechanism behind content-preserving serialization.
type TagRegion struct {
	Kind     RegionKind
	ID       string
	Start    int
	End      int
	HasValue bool
}

// SortRegions orders regions by document position.
func SortRegions(regions []TagRegion) {
	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Start != regions[j].Start {
			return regions[i].Start < regions[j].Start
		}
		return regions[i].End > regions[j].End
	})
}

// RegionFor returns the first region of the given kind and id.
func RegionFor(regions []TagRegion, kind RegionKind, id string) (TagRegion, bool) {
	for _, r := range regions {
		if r.Kind == kind && r.ID == id {
			return r, true
		}
	}
	return TagRegion{}, false
}
