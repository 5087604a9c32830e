// Package release queries the release API for installable packages and
// their latest release metadata.
//
// The API exposes two reads over one endpoint:
//
//	GET <base>                 -> [{"name": "..."}, ...]
//	GET <base>?package=<name>  -> {"version": "...", "url": "...", "news": "..."}
//
// Failures are returned as errors tagged with CodeResolution; callers treat
// them as fatal. There is no retry.
//
// Example usage:
//
//	resolver := release.NewResolver(release.DefaultBaseURL)
//	names, err := resolver.ListPackages(ctx)
//	info, err := resolver.Latest(ctx, "omen")
package release
