// Package resolver materializes the external inputs a flake manifest
// declares.
//
// Each input names a URL whose scheme selects a Fetcher: `path:` roots a
// local directory, `https:`/`http:` download a gzipped source tarball, and
// `mem:` serves fixture trees in tests. The Registry dispatches on the
// scheme, digests the fetched tree, and returns an immutable Handle whose
// Source filesystem downstream code reads packages from.
//
// Resolution of a whole input set runs concurrently through ResolveAll and
// can be memoized with the Cached decorator. Failures are never cached.
package resolver
