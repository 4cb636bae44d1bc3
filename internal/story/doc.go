// Package story holds the branching-narrative model operations: ordered branch
// sequences keyed by id, choice resolution, the breadcrumb path of a session and
// the read-time navigator. Nothing here touches storage; callers load and persist
// the whole branch sequence of a story.
package story
