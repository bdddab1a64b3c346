// Command gramfuzz is a CLI front end over the gram/dsl packages: it loads
// grammar files, generates samples from them, or checks a grammar for
// unreachable rules. The core engine (gram) knows nothing of files, flags,
// or logging; all of that lives here, outside the library boundary.
package main

func main() {
	Execute()
}
