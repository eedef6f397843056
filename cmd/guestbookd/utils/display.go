// Package utils contains utility functions for the guestbook daemon.
package utils

import (
	"fmt"
)

// DisplayLogo prints the guestbook banner with version information
func DisplayLogo(version string) {
	fmt.Println()
	fmt.Println(` ░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░
 ░█▀▀░█░█░█▀▀░█▀▀░▀█▀░█▀▄░█▀█░█▀█░█░█░
 ░█░█░█░█░█▀▀░▀▀█░░█░░█▀▄░█░█░█░█░█▀▄░
 ░▀▀▀░▀▀▀░▀▀▀░▀▀▀░░▀░░▀▀░░▀▀▀░▀▀▀░▀░▀░
 ░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░`)
	fmt.Printf("\n guestbookd v%s - Batch transaction daemon\n", version)
	fmt.Println(" Messages, todos and payments, one nonce at a time")
	fmt.Println()
}
