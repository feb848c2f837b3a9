// Package pkgset builds and represents realized, system-scoped package
// collections. Build is the default strategy for turning a base collection
// factory, a system identifier, a configuration record and a composed
// overlay into a frozen Collection; manifests that define their own
// pkgs_for_system function bypass it entirely.
package pkgset
