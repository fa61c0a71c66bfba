// Package flowdt implements a packet-classification index backed by a
// binary decision tree over flow rules.
//
// A [Classifier] holds a set of rules, each a (match, priority,
// version-visibility) triple. A lookup accepts a fully specified flow
// and returns the visible rule of highest priority whose match is
// satisfied by that flow.
//
// Readers never block: [Classifier.Lookup], [Classifier.Cursor] and
// the other query APIs traverse an immutable, atomically published
// tree. Writers ([Classifier.InsertRule], [Classifier.RemoveRule], ...)
// rebuild only the root-to-leaf path they touch and publish a fresh
// root; they must be serialized by the caller (single-writer
// contract). [Classifier.Defer] / [Classifier.Publish] batch several
// writes behind one publication.
package flowdt
