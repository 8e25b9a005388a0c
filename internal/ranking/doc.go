// Package ranking reduces the per-service metrics collected during an
// experiment to system-level aggregates and orders the tested
// configurations by strict lexicographic comparison over a prioritized
// metric list.
package ranking
