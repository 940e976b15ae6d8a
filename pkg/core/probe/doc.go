// Package probe detects which version of a vendored charm library a
// repository contains.
//
// Candidate URLs are the cross product of branch/path conventions and
// version tags, concatenated onto the repository URL:
//
//	repo + convention + library path + version
//
// Conventions are tried in order (most likely layout first) and, within a
// convention, versions are tried lowest first. The first candidate whose
// existence check succeeds is the answer and probing stops there. When a
// repository carries several versions under the first matching convention,
// the lowest one is reported.
//
// Checks run strictly one after another: every check decides whether the
// next one is issued. Failed checks of any kind (timeouts, DNS errors,
// non-2xx responses) only mean "this candidate does not exist".
package probe
