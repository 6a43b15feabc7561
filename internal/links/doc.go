// Package links turns LMS object reference IDs into absolute redirect
// URLs. The template resolver covers the common case of a single goto
// URL pattern; the static resolver lets deployments pin individual refs
// to hand-picked destinations.
package links
