// Logsift - Android Logcat Dump Toolkit
//
// Logsift parses Android logcat dump files into structured records and
// provides filtering, statistics, format detection, and portable exports.
package main

import (
	"os"

	"github.com/logsift/logsift/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
