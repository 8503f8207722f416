// Package model defines the data structures shared across the crawler.
//
// The types in this package are plain data with small helpers only. They
// flow from the crawl engine to the result sink, the report writers, and
// the database, so the package must not depend on any other internal
// package.
package model
