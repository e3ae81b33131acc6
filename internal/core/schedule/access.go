package schedule

import "reflect"

// Access is a system's declared read/write signature over bundle types and
// resource types. The schedule builder computes pairwise conflicts from these
// declarations once at startup; there are no per-call locks afterwards, so
// every data dependency must be declared here.
type Access struct {
	ReadsBundles    []reflect.Type
	WritesBundles   []reflect.Type
	ReadsResources  []reflect.Type
	WritesResources []reflect.Type
}

// T names a bundle or resource type in an Access declaration.
func T[V any]() reflect.Type {
	return reflect.TypeOf((*V)(nil)).Elem()
}

// ConflictsWith reports whether two signatures may not run concurrently: a
// write on either side overlapping any access on the other, in either the
// bundle space or the resource space.
func (a Access) ConflictsWith(b Access) bool {
	if overlaps(a.WritesBundles, b.WritesBundles) ||
		overlaps(a.WritesBundles, b.ReadsBundles) ||
		overlaps(a.ReadsBundles, b.WritesBundles) {
		return true
	}
	if overlaps(a.WritesResources, b.WritesResources) ||
		overlaps(a.WritesResources, b.ReadsResources) ||
		overlaps(a.ReadsResources, b.WritesResources) {
		return true
	}
	return false
}

func overlaps(xs, ys []reflect.Type) bool {
	for _, x := range xs {
		for _, y := range ys {
			if x == y {
				return true
			}
		}
	}
	return false
}
