// Package filter provides the token-filter consumer surface of the dynamic
// synonym subsystem: a bleve analysis.TokenFilter that expands tokens using
// the currently served synonym map, and a registry for bookkeeping of live
// consumers.
//
// Consumers pull: each token stream pass loads the current map from the
// handle with a single atomic read. Nothing pushes updates to filters, so
// no notification or weak-reference machinery is needed. The consumer
// registry stores only an identifier per consumer, never a reference to
// the filter itself, so membership can never extend a consumer's lifetime;
// a consumer removes itself by closing its registration on teardown.
package filter
