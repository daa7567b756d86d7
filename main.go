/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package main

import "github.com/schematiq/schematiq/cmd"

func main() {
	cmd.Execute()
}
