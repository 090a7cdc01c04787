//go:build devauth

package auth

// BypassAvailable is true in builds with the devauth tag. Never deploy such a build.
const BypassAvailable = true
