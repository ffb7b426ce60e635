/*
Copyright © 2026 Soilsense Authors
*/
package main

import "soilsense/cmd"

func main() {
	cmd.Execute()
}
