// Package version provides centralized version information for the guestbook
// tools. guestbookd and guestctl are versioned independently so the CLI can
// ship fixes without a daemon release. Versions follow semver.
package version

// GuestbookdVersion holds the current guestbookd daemon version.
const GuestbookdVersion = "0.2.0-dev"

// GuestctlVersion holds the current guestctl CLI version.
// Sent as part of the User-Agent header when talking to guestbookd.
const GuestctlVersion = "0.2.0-dev"
