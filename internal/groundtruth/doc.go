// Package groundtruth turns the per-line manual annotations attached to
// diff hunks into the normalized ground truth of the LLTC4J dataset.
//
// The transform maps each labelled, non-context line to a
// (source, target, group) record: deletions keep their old-file line
// number, additions keep their new-file line number, and the fine-grained
// labels collapse into the two groups "bugfix" and "nonbugfix". Lines
// labelled as test, documentation, or whitespace changes never appear in
// the ground truth.
package groundtruth
