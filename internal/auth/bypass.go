//go:build !devauth

package auth

// BypassAvailable is false in regular builds, AUTH_BYPASS has no effect.
const BypassAvailable = false
