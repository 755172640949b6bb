// Package main provides the CLI entrypoint for hybar.
package main

func main() {
	Execute()
}
