// Package report locates and renders report artifacts on the local
// filesystem.
//
// The file renderer resolves a report ID to a generated HTML file in the
// output directory and, when PDF output is requested, maps it to the
// matching PDF path. It is the production Renderer behind the batch
// supervisor.
package report
